package blogservice

import "regexp"

var (
	scriptBlockRX   = regexp.MustCompile(`(?is)<\s*script[^>]*>.*?<\s*/\s*script\s*>`)
	inlineHandlerRX = regexp.MustCompile(`(?i)\s+on[a-z]+\s*=\s*("[^"]*"|'[^']*')`)
)

// sanitizeMarkdown drops <script> blocks and inline on* event handlers from blog content.
func sanitizeMarkdown(markdown string) string {
	markdown = scriptBlockRX.ReplaceAllString(markdown, "")
	return inlineHandlerRX.ReplaceAllString(markdown, "")
}
