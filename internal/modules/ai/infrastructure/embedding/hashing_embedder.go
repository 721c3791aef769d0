package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/cloudwego/eino/components/embedding"
)

// HashingEmbedder 词袋哈希向量，确定性输出，用于本地开发与测试。
// 共享词越多的文本余弦相似度越高。
type HashingEmbedder struct {
	Dim int
}

func NewHashingEmbedder(dim int) *HashingEmbedder {
	if dim <= 0 {
		dim = 256
	}
	return &HashingEmbedder{Dim: dim}
}

func (m *HashingEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	result := make([][]float64, len(texts))
	for i, text := range texts {
		result[i] = m.embed(text)
	}
	return result, nil
}

func (m *HashingEmbedder) embed(text string) []float64 {
	vec := make([]float64, m.Dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[int(h.Sum32()%uint32(m.Dim))] += 1
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		// 空文本给一个固定方向，避免零向量在余弦检索中出现 NaN
		vec[0] = 1
		return vec
	}
	norm = math.Sqrt(norm)
	for j := range vec {
		vec[j] /= norm
	}
	return vec
}

var _ embedding.Embedder = (*HashingEmbedder)(nil)
