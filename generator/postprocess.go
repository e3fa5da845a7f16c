package generator

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\n(.*?)\n?```$")
	titleRe = regexp.MustCompile(`(?m)^#\s+(.+)$`)
)

// PostProcess normalizes raw model output and rejects text that cannot be
// passed to the next stage.
func PostProcess(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(text); len(m) == 2 {
		text = strings.TrimSpace(m[1])
	}
	if text == "" {
		return "", errors.New("model returned empty text")
	}
	if !strings.ContainsFunc(text, unicode.IsLetter) {
		return "", errors.New("model returned text without any words")
	}
	return text, nil
}

// ExtractTitle returns the first level-one markdown heading, if any.
func ExtractTitle(md string) string {
	m := titleRe.FindStringSubmatch(md)
	if len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return ""
}
