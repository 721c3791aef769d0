package chunking

import (
	"context"
	"fmt"
	"strings"
)

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50

	StrategySentence  = "sentence"
	StrategyRecursive = "recursive"
)

// Chunker 把一段文本切成有序、带重叠的片段
type Chunker interface {
	Split(ctx context.Context, text string) ([]string, error)
}

// NewChunker 按策略名创建切片器
func NewChunker(strategy string, size, overlap int) (Chunker, error) {
	size, overlap = normalize(size, overlap)
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategySentence:
		return NewSentenceChunker(size, overlap), nil
	case StrategyRecursive:
		return NewRecursiveChunker(size, overlap), nil
	default:
		return nil, fmt.Errorf("unknown chunker strategy: %s", strategy)
	}
}

func normalize(size, overlap int) (int, int) {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	// 重叠不超过半个切片，保证每轮至少前进 size/2
	if overlap >= size/2 {
		overlap = size / 4
	}
	return size, overlap
}
