package blogservice

import (
	"regexp"

	"github.com/sushihentaime/blogcms/internal/common"
)

var (
	SlugRX = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

func validateBlog(v *common.Validator, b *Blog) {
	v.Struct(b)
	if b.Slug != "" {
		v.Check(SlugRX.MatchString(b.Slug), "slug", "must only contain lowercase letters, numbers, and dashes")
	}
}

func validatePage(v *common.Validator, page string) {
	v.Check(page != "", "page", "must be provided")
	v.Check(len(page) <= 2048, "page", "must not be more than 2048 characters long")
	v.Check(len(page) == 0 || page[0] == '/', "page", "must be an absolute path")
}
