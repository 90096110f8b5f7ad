package folioapi

import (
	"fmt"
	"strings"
)

const wordsPerMinute = 200

// ReadTime estimates how long content takes to read at 200 words per
// minute, rounded up, formatted as "<n> min read". A word is a run of
// non-whitespace. The result depends only on the content, so recomputing
// on unchanged text always yields the same string.
func ReadTime(content string) string {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
