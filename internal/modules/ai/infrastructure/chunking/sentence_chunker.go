package chunking

import (
	"context"
	"strings"
	"unicode"
)

// SentenceChunker 基于 rune 计数切分，优先在句末断开，其次在空白处断开
type SentenceChunker struct {
	ChunkSize    int
	ChunkOverlap int
}

func NewSentenceChunker(size, overlap int) *SentenceChunker {
	size, overlap = normalize(size, overlap)
	return &SentenceChunker{ChunkSize: size, ChunkOverlap: overlap}
}

func (c *SentenceChunker) Split(_ context.Context, text string) ([]string, error) {
	return c.Chunk(text), nil
}

// Chunk 每个片段不超过 ChunkSize 个字符，多字节字符不会被截断
func (c *SentenceChunker) Chunk(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}
	}
	runes := []rune(text)
	n := len(runes)
	if n <= c.ChunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < n {
		end := start + c.ChunkSize
		if end >= n {
			if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
				chunks = append(chunks, tail)
			}
			break
		}

		cut := findBreak(runes, start, end, start+c.ChunkSize/2)
		if part := strings.TrimSpace(string(runes[start:cut])); part != "" {
			chunks = append(chunks, part)
		}

		next := cut - c.ChunkOverlap
		if next <= start {
			next = cut
		}
		start = alignWordStart(runes, next, cut)
	}
	return chunks
}

// findBreak 在 (minCut, end] 内从后往前找断点
func findBreak(runes []rune, start, end, minCut int) int {
	if minCut <= start {
		minCut = start + 1
	}
	for i := end; i > minCut; i-- {
		if isSentenceEnd(runes[i-1]) && (unicode.IsSpace(runes[i]) || isCJKSentenceEnd(runes[i-1])) {
			return i
		}
	}
	for i := end; i > minCut; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return end
}

// alignWordStart 让重叠区从完整单词开始；找不到空白时保持原位
func alignWordStart(runes []rune, pos, limit int) int {
	if pos == 0 || pos >= limit || unicode.IsSpace(runes[pos-1]) {
		return pos
	}
	for i := pos; i < limit; i++ {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return pos
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '\n':
		return true
	}
	return isCJKSentenceEnd(r)
}

func isCJKSentenceEnd(r rune) bool {
	switch r {
	case '。', '！', '？':
		return true
	}
	return false
}
