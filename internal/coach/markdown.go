package coach

import "regexp"

// Responses are rendered as plain text in the client, so markdown the model
// sneaks in despite the prompt instructions gets stripped. Fenced blocks are
// removed first so inline rules cannot eat their delimiters.
var (
	reFence   = regexp.MustCompile("(?s)```.*?```")
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldAlt = regexp.MustCompile(`__(.+?)__`)
	reItalic  = regexp.MustCompile(`\*(.+?)\*`)
	reItalAlt = regexp.MustCompile(`_(.+?)_`)
	reHeader  = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	reCode    = regexp.MustCompile("`(.+?)`")
)

// StripMarkdown removes common markdown formatting, keeping the inner text.
// Fenced code blocks are dropped entirely. Idempotent: stripping already-plain
// text returns it unchanged.
func StripMarkdown(text string) string {
	text = reFence.ReplaceAllString(text, "")
	text = reBold.ReplaceAllString(text, "$1")
	text = reBoldAlt.ReplaceAllString(text, "$1")
	text = reItalic.ReplaceAllString(text, "$1")
	text = reItalAlt.ReplaceAllString(text, "$1")
	text = reHeader.ReplaceAllString(text, "$1")
	text = reCode.ReplaceAllString(text, "$1")
	return text
}
