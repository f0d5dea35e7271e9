package content

import (
	"strings"

	"go_polyseo/internal/model"
)

var taxonomyBase = map[string]string{
	model.TaxonomyCategory: "category",
	model.TaxonomyPostTag:  "tag",
}

func langPrefix(lang, defaultLang string) string {
	if lang == "" || lang == defaultLang {
		return ""
	}
	return "/" + lang
}

// Address returns the site-relative address of a content item. Posts and
// pages live at the root, other types under their type name; non-default
// languages are prefixed with their code.
func Address(c *model.Content, defaultLang string) string {
	var b strings.Builder
	b.WriteString(langPrefix(c.Language, defaultLang))
	if c.Type != model.ContentTypePost && c.Type != model.ContentTypePage {
		b.WriteString("/")
		b.WriteString(c.Type)
	}
	b.WriteString("/")
	b.WriteString(c.Slug)
	b.WriteString("/")
	return b.String()
}

// TermAddress returns the site-relative address of a taxonomy term archive.
func TermAddress(t *model.Term, defaultLang string) string {
	base, ok := taxonomyBase[t.Taxonomy]
	if !ok {
		base = t.Taxonomy
	}
	return langPrefix(t.Language, defaultLang) + "/" + base + "/" + t.Slug + "/"
}

// EffectiveLanguage returns the language an item is served in: untagged items
// belong to the default language.
func EffectiveLanguage(tag, defaultLang string) string {
	if tag == "" {
		return defaultLang
	}
	return tag
}
