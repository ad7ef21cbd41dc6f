package mailservice

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
)

//go:embed templates/*
var templateFS embed.FS

// Template holds every embedded email template, parsed once at startup. Each file
// defines the "subject", "plainBody" and "htmlBody" blocks.
type Template struct {
	set map[string]*template.Template
}

func NewTemplate() (*Template, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("could not list templates: %w", err)
	}

	tp := &Template{set: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		t, err := template.New("email").ParseFS(templateFS, file)
		if err != nil {
			return nil, fmt.Errorf("could not parse template %s: %w", file, err)
		}

		for _, block := range []string{"subject", "plainBody", "htmlBody"} {
			if t.Lookup(block) == nil {
				return nil, fmt.Errorf("template %s is missing the %q block", file, block)
			}
		}

		tp.set[path.Base(file)] = t
	}

	return tp, nil
}

// Render executes the named template with data.
func (tp *Template) Render(name string, data any) (subject, plainBody, htmlBody *bytes.Buffer, err error) {
	t, ok := tp.set[name]
	if !ok {
		return nil, nil, nil, fmt.Errorf("unknown template %q", name)
	}

	subject, plainBody, htmlBody = new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)
	for block, buf := range map[string]*bytes.Buffer{"subject": subject, "plainBody": plainBody, "htmlBody": htmlBody} {
		if err := t.ExecuteTemplate(buf, block, data); err != nil {
			return nil, nil, nil, fmt.Errorf("render %s/%s: %w", name, block, err)
		}
	}

	return subject, plainBody, htmlBody, nil
}
