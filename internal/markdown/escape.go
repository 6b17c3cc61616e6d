// Package markdown escapes user-controlled text for Telegram's legacy Markdown parse mode.
package markdown

import "strings"

var escaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// Escape prefixes the characters that open an entity in legacy Markdown with a backslash.
func Escape(s string) string {
	return escaper.Replace(s)
}
