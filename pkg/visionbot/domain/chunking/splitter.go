// Package chunking splits outbound payloads which exceed the chat transport's per-message ceiling into ordered,
// independently sendable parts.
package chunking

import (
	"fmt"
	"strconv"
	"strings"
)

const fence = "```"

// SplitText slices `content` into chunks of at most `limit` characters. No word-boundary awareness: the
// concatenation of the chunks is always exactly `content`. Content which fits is returned as a single chunk.
func SplitText(content string, limit int) []string {
	runes := []rune(content)
	if limit <= 0 || len(runes) <= limit {
		return []string{content}
	}
	chunks := make([]string, 0, (len(runes)+limit-1)/limit)
	for start := 0; start < len(runes); start += limit {
		end := min(start+limit, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// SplitCodeBlock wraps `content` into fenced code blocks tagged with `language`. If more than one block is needed,
// every block starts with a "# Part i/N" line. Fences, the language tag and part markers are subtracted from
// `limit`, so that no returned message is longer than `limit`.
func SplitCodeBlock(content, language string, limit int) []string {
	length := len([]rune(content))
	singleBudget := limit - codeBlockOverhead(language)
	if length <= singleBudget || singleBudget <= 0 {
		return []string{wrapCodeBlock(content, language, "")}
	}
	budget, total := multipartBudget(length, language, limit)
	if budget <= 0 {
		// Not even one character fits next to a part marker.
		return []string{wrapCodeBlock(content, language, "")}
	}
	chunks := SplitText(content, budget)
	for i, chunk := range chunks {
		chunks[i] = wrapCodeBlock(chunk, language, partMarker(i+1, total))
	}
	return chunks
}

// multipartBudget finds how many characters of content fit into a single part. The marker's width depends on the
// number of parts, which in turn depends on the budget, so it iterates until the part count settles (it only grows,
// so that happens after a couple of rounds at most).
func multipartBudget(length int, language string, limit int) (budget, total int) {
	total = 2
	for {
		budget = limit - codeBlockOverhead(language) - len(partMarker(total, total))
		if budget <= 0 {
			return 0, 0
		}
		newTotal := (length + budget - 1) / budget
		if len(strconv.Itoa(newTotal)) <= len(strconv.Itoa(total)) {
			return budget, newTotal
		}
		total = newTotal
	}
}

// codeBlockOverhead the characters added around the content: "```lang\n" and "\n```".
func codeBlockOverhead(language string) int {
	return 2*len(fence) + len([]rune(language)) + 2
}

func partMarker(index, total int) string {
	return fmt.Sprintf("# Part %d/%d\n", index, total)
}

func wrapCodeBlock(content, language, marker string) string {
	var sb strings.Builder
	sb.WriteString(fence)
	sb.WriteString(language)
	sb.WriteString("\n")
	sb.WriteString(marker)
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(fence)
	return sb.String()
}
