// Package prompt turns user text plus a mode and style into an engine prompt,
// and cleans message context picked up from a text field before a reply.
package prompt

import (
	"fmt"
	"strings"
)

// Mode selects the transformation.
type Mode string

const (
	ModeEnhance Mode = "enhance"
	ModeReply   Mode = "reply"
)

// Style is the tone requested by the user.
type Style string

const (
	StyleFormal    Style = "formal"
	StyleFriendly  Style = "friendly"
	StyleLovely    Style = "lovely"
	StyleConcise   Style = "concise"
	StyleTechnical Style = "technical"
)

// Styles lists every supported style in picker order.
var Styles = []Style{StyleFormal, StyleFriendly, StyleLovely, StyleConcise, StyleTechnical}

// ParseMode validates s as a Mode. Matching ignores case and surrounding space.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeEnhance, ModeReply:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want enhance or reply)", s)
}

// ParseStyle validates s as a Style.
func ParseStyle(s string) (Style, error) {
	st := Style(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Styles {
		if v == st {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown style %q", s)
}

// Build returns the prompt for text in the given mode and style. Unknown modes
// fall back to enhance.
func Build(text string, mode Mode, style Style) string {
	if mode == ModeReply {
		return "You write short {STYLE} replies. Read the message and produce a direct reply in 1-4 sentences. No greetings if it's chat. " +
			"MESSAGE: <<<" + text + ">>> {STYLE}: " + string(style)
	}
	return "You are a concise editor. Improve clarity and tone to {STYLE}. Keep meaning. Keep similar length. Output only the revised text. " +
		"TEXT: <<<" + text + ">>> {STYLE}: " + string(style)
}
