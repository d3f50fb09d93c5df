package feed

import (
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	blankLinePattern  = regexp.MustCompile(`\n\s*\n`)
	componentsPattern = regexp.MustCompile(`(?i)(?:affected components|components affected)[^<]*(?:</[a-z0-9]+>[^<]*)*<ul[^>]*>([\s\S]*?)</ul>`)
	listItemPattern   = regexp.MustCompile(`(?i)</?li[^>]*>`)
	operationalNote   = regexp.MustCompile(`(?i)\(operational\)`)
)

// entityReplacer decodes the entities status providers emit. The
// double-escaped apostrophe must be handled before &amp;.
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;#39;", "'",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
)

// StripHTML converts an HTML fragment into plain text
func StripHTML(html string) string {
	text := tagPattern.ReplaceAllString(html, "")
	text = entityReplacer.Replace(text)
	text = blankLinePattern.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// ExtractComponents returns the entries of an "Affected components" list
// found in an HTML body. A body without such a list yields an empty slice.
func ExtractComponents(html string) []string {
	components := []string{}

	m := componentsPattern.FindStringSubmatch(html)
	if m == nil {
		return components
	}

	for _, part := range listItemPattern.Split(m[1], -1) {
		line := strings.TrimSpace(part)
		if line == "" || strings.HasPrefix(line, "<") || strings.HasSuffix(line, ">") {
			continue
		}
		line = strings.TrimSpace(operationalNote.ReplaceAllString(line, ""))
		if line != "" {
			components = append(components, line)
		}
	}
	return components
}
