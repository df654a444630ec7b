package plaintext

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Extract decodes raw bytes as UTF-8 text. Form feeds mark page
// boundaries when the exporting tool preserved them.
func Extract(raw []byte) (string, int, error) {
	if !utf8.Valid(raw) {
		return "", 0, fmt.Errorf("content is not valid utf-8 text")
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", 0, nil
	}

	pages := strings.Count(text, "\f") + 1
	return text, pages, nil
}
