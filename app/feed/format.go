package feed

import (
	"cmp"
	"strings"
)

const (
	FormatMarkdown = "markdown"
	FormatPlain    = "plain"
)

var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

// FormatMessage renders an entry for a destination. Markdown output targets
// the legacy Telegram Markdown dialect.
func FormatMessage(entry Entry, format string) string {
	title := cmp.Or(strings.TrimSpace(entry.Title), "Untitled")
	summary := cmp.Or(strings.TrimSpace(entry.Summary), "No summary available")

	var b strings.Builder
	if format == FormatMarkdown {
		b.WriteString("📰 *New article*\n\n")
		b.WriteString(boldTitle(title) + "\n\n")
		b.WriteString(markdownEscaper.Replace(summary))
		if entry.Link != "" {
			b.WriteString("\n\n🔗 [Read the article](" + entry.Link + ")")
		}
		return b.String()
	}

	b.WriteString("📰 New article\n\n")
	b.WriteString(title + "\n\n")
	b.WriteString(summary)
	if entry.Link != "" {
		b.WriteString("\n\n🔗 " + entry.Link)
	}
	return b.String()
}

// boldTitle wraps title in a bold entity. Legacy Markdown has no escapes inside
// entities, so a literal '*' closes the entity, is escaped outside it and the
// entity is reopened. Other markup characters are literal inside bold.
func boldTitle(title string) string {
	parts := strings.Split(title, "*")
	for i, part := range parts {
		if part != "" {
			parts[i] = "*" + part + "*"
		}
	}
	return strings.Join(parts, "\\*")
}
