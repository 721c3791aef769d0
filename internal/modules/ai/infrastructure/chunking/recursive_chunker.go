package chunking

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino-ext/components/document/transformer/splitter/recursive"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/schema"
)

// RecursiveChunker 基于 eino 递归分隔符切分器
type RecursiveChunker struct {
	ChunkSize    int
	ChunkOverlap int

	initOnce sync.Once
	initErr  error
	impl     document.Transformer
}

func NewRecursiveChunker(size, overlap int) *RecursiveChunker {
	size, overlap = normalize(size, overlap)
	return &RecursiveChunker{ChunkSize: size, ChunkOverlap: overlap}
}

func (c *RecursiveChunker) Split(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	c.initOnce.Do(func() {
		impl, err := recursive.NewSplitter(ctx, &recursive.Config{
			ChunkSize:   c.ChunkSize,
			OverlapSize: c.ChunkOverlap,
			Separators:  []string{"\n\n", "\n", ". ", "! ", "? ", "。", "！", "？", " "},
			LenFunc: func(s string) int {
				return len([]rune(s))
			},
			KeepType: recursive.KeepTypeEnd,
		})
		if err != nil {
			c.initErr = err
			return
		}
		c.impl = impl
	})
	if c.initErr != nil {
		return nil, c.initErr
	}
	if c.impl == nil {
		return nil, fmt.Errorf("recursive splitter not initialized")
	}

	frags, err := c.impl.Transform(ctx, []*schema.Document{{Content: text}})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(frags))
	for _, f := range frags {
		if f == nil {
			continue
		}
		if s := strings.TrimSpace(f.Content); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
