package prompt

import "strings"

// replyContextLines is how much text before the cursor a reply considers.
const replyContextLines = 20

// ReplySource keeps the last lines of the text before the cursor and strips
// quotes and signatures from them.
func ReplySource(before string) string {
	lines := strings.Split(before, "\n")
	if len(lines) > replyContextLines {
		lines = lines[len(lines)-replyContextLines:]
	}
	return StripQuotesAndSignatures(strings.Join(lines, "\n"))
}

// StripQuotesAndSignatures removes "On ... wrote:" attribution lines, lines
// quoted with '>', and everything from a "--" signature delimiter on.
func StripQuotesAndSignatures(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimRight(l, " \t\r") == "--" {
			break
		}
		if strings.HasPrefix(l, ">") || isAttribution(l) {
			continue
		}
		kept = append(kept, l)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func isAttribution(line string) bool {
	l := strings.TrimRight(line, "\r")
	return strings.HasPrefix(l, "On ") && strings.HasSuffix(l, " wrote:") && len(l) > len("On  wrote:")
}
