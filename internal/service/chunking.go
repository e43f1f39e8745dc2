package service

import "unicode"

// ChunkConfig controls how document text is split before embedding.
type ChunkConfig struct {
	// Size is the maximum chunk length in runes.
	Size int
	// Overlap is how many trailing runes of a chunk are repeated at the
	// start of the next one. Must be smaller than Size.
	Overlap int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:    800,
		Overlap: 150,
	}
}

// ChunkText splits text into overlapping segments of at most cfg.Size runes.
// Cut points prefer paragraph breaks, then sentence ends, then whitespace,
// falling back to a hard cut. Consecutive segments share cfg.Overlap runes,
// so concatenating each segment's non-overlapping remainder reproduces the
// input exactly.
//
// Empty input yields nil; input within the size bound yields one segment.
func ChunkText(text string, cfg ChunkConfig) []string {
	if text == "" {
		return nil
	}
	if cfg.Size <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap >= cfg.Size {
		cfg.Overlap = cfg.Size - 1
	}

	runes := []rune(text)
	if len(runes) <= cfg.Size {
		return []string{text}
	}

	chunks := make([]string, 0, len(runes)/(cfg.Size-cfg.Overlap)+1)
	start := 0
	for start < len(runes) {
		end := start + cfg.Size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		// The cut must stay past start+Overlap so the next chunk's start
		// still advances after backing up by the overlap.
		cut := findCut(runes, start+cfg.Overlap+1, end)
		chunks = append(chunks, string(runes[start:cut]))

		next := cut - cfg.Overlap
		if next <= start {
			next = cut
		}
		start = next
	}

	return chunks
}

// findCut picks a cut position in (min, end], scanning backwards from end.
// Preference order: paragraph break, sentence end, whitespace, hard cut.
func findCut(runes []rune, min, end int) int {
	if min < 1 {
		min = 1
	}

	for i := end; i > min; i-- {
		if isParagraphBreak(runes, i) {
			return i
		}
	}
	for i := end; i > min; i-- {
		if isSentenceEnd(runes, i) {
			return i
		}
	}
	for i := end; i > min; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}

// isParagraphBreak reports whether position i sits just after a blank line.
func isParagraphBreak(runes []rune, i int) bool {
	return i >= 2 && runes[i-1] == '\n' && runes[i-2] == '\n'
}

// isSentenceEnd reports whether position i sits just after sentence-ending
// punctuation followed by whitespace.
func isSentenceEnd(runes []rune, i int) bool {
	if i < 1 || i >= len(runes) {
		return false
	}
	switch runes[i-1] {
	case '.', '!', '?':
		return unicode.IsSpace(runes[i])
	}
	return false
}
