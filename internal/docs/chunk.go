package docs

import "strings"

const (
	chunkSize    = 500
	chunkOverlap = 50
)

// chunkText splits text into fixed-size rune windows with overlap so a
// sentence cut at a boundary still appears whole in one of the chunks.
// Whitespace-only windows are dropped.
func chunkText(text string, size, overlap int) []string {
	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += size - overlap {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[start:end])
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
