package effort

import (
	"strings"

	"golang.org/x/net/html"
)

// countWords counts whitespace separated tokens in the visible text of an HTML fragment.
// Markup, comments and script/style bodies are not counted.
func countWords(body string) int {
	if strings.TrimSpace(body) == "" {
		return 0
	}
	z := html.NewTokenizer(strings.NewReader(body))
	words := 0
	skipDepth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way what was read so far is the answer.
			return words
		case html.StartTagToken:
			if name, _ := z.TagName(); isInvisible(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isInvisible(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				words += len(strings.Fields(string(z.Text())))
			}
		}
	}
}

func isInvisible(tag string) bool {
	return tag == "script" || tag == "style"
}
