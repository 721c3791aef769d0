package vectordb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"ChatDesk/internal/modules/ai/domain/repository"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	fieldID           = "id"
	fieldTenantID     = "tenant_id"
	fieldSource       = "source"
	fieldSourcePrefix = "source_prefix"
	fieldContent      = "content"
)

// VarChar 的 max_length 按字节计
const (
	MaxSourceBytes       = 1024
	MaxSourcePrefixBytes = 256
	MaxContentBytes      = 65535
)

// ValidateChunkSize 切片长度按 rune 计，最坏情况每个 rune 占 utf8.UTFMax 字节
func ValidateChunkSize(runes int) error {
	if runes*utf8.UTFMax > MaxContentBytes {
		return fmt.Errorf("chunk size %d may exceed milvus content limit of %d bytes", runes, MaxContentBytes)
	}
	return nil
}

// MilvusStore 基于 Milvus 的 VectorStore 实现
type MilvusStore struct {
	cli         mclient.Client
	collection  string
	vectorField string
	metricType  entity.MetricType
	vectorDim   int
	searchParam entity.SearchParam
}

func NewMilvusStore(cli mclient.Client, collection string, vectorField string, vectorDim int, metricType entity.MetricType) (*MilvusStore, error) {
	if cli == nil {
		return nil, errors.New("milvus client is nil")
	}
	if strings.TrimSpace(collection) == "" {
		return nil, errors.New("collection is empty")
	}
	if strings.TrimSpace(vectorField) == "" {
		return nil, errors.New("vectorField is empty")
	}
	if vectorDim <= 0 {
		return nil, fmt.Errorf("invalid vectorDim: %d", vectorDim)
	}
	if metricType == "" {
		metricType = entity.COSINE
	}
	sp, err := entity.NewIndexAUTOINDEXSearchParam(1)
	if err != nil {
		return nil, err
	}
	return &MilvusStore{cli: cli, collection: collection, vectorField: vectorField, metricType: metricType, vectorDim: vectorDim, searchParam: sp}, nil
}

func (s *MilvusStore) Upsert(ctx context.Context, items []repository.VectorUpsertItem) ([]string, error) {
	if len(items) == 0 {
		return []string{}, nil
	}
	ids := make([]string, 0, len(items))
	vectors := make([][]float32, 0, len(items))
	tenants := make([]string, 0, len(items))
	sources := make([]string, 0, len(items))
	prefixes := make([]string, 0, len(items))
	contents := make([]string, 0, len(items))

	for _, it := range items {
		if it.ID == "" {
			return nil, errors.New("upsert item missing ID")
		}
		if it.TenantID == "" {
			return nil, fmt.Errorf("upsert item %s missing tenant", it.ID)
		}
		if len(it.Vector) != s.vectorDim {
			return nil, fmt.Errorf("vector dim mismatch for id=%s, got=%d want=%d", it.ID, len(it.Vector), s.vectorDim)
		}
		if len(it.Content) > MaxContentBytes {
			return nil, fmt.Errorf("content of %s is %d bytes, limit %d", it.ID, len(it.Content), MaxContentBytes)
		}
		ids = append(ids, it.ID)
		vectors = append(vectors, it.Vector)
		tenants = append(tenants, it.TenantID)
		sources = append(sources, truncateUTF8(it.Source, MaxSourceBytes))
		prefixes = append(prefixes, truncateUTF8(it.SourcePrefix, MaxSourcePrefixBytes))
		contents = append(contents, it.Content)
	}

	_, err := s.cli.Upsert(
		ctx,
		s.collection,
		"",
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnFloatVector(s.vectorField, s.vectorDim, vectors),
		entity.NewColumnVarChar(fieldTenantID, tenants),
		entity.NewColumnVarChar(fieldSource, sources),
		entity.NewColumnVarChar(fieldSourcePrefix, prefixes),
		entity.NewColumnVarChar(fieldContent, contents),
	)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *MilvusStore) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	expr := fmt.Sprintf(`%s in ["%s"]`, fieldID, strings.Join(ids, `","`))
	return s.cli.Delete(ctx, s.collection, "", expr)
}

func (s *MilvusStore) Search(ctx context.Context, vector []float32, topK int, filter repository.VectorFilter) ([]repository.VectorSearchHit, error) {
	if len(vector) != s.vectorDim {
		return nil, fmt.Errorf("vector dim mismatch, got=%d want=%d", len(vector), s.vectorDim)
	}
	expr, err := buildFilterExpr(filter)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 3
	}
	res, err := s.cli.Search(
		ctx,
		s.collection,
		[]string{},
		expr,
		[]string{fieldTenantID, fieldSource, fieldContent},
		[]entity.Vector{entity.FloatVector(vector)},
		s.vectorField,
		s.metricType,
		topK,
		s.searchParam,
	)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return []repository.VectorSearchHit{}, nil
	}
	return parseSearchResult(res[0])
}

// buildFilterExpr 租户条件必填
func buildFilterExpr(filter repository.VectorFilter) (string, error) {
	tenant := strings.TrimSpace(filter.TenantID)
	if tenant == "" {
		return "", errors.New("vector search requires tenant filter")
	}
	return fmt.Sprintf(`%s == "%s"`, fieldTenantID, escapeExprString(tenant)), nil
}

func escapeExprString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func parseSearchResult(sr mclient.SearchResult) ([]repository.VectorSearchHit, error) {
	if sr.Err != nil {
		return nil, sr.Err
	}
	hits := make([]repository.VectorSearchHit, 0, sr.ResultCount)
	tenantCol := columnByName(sr.Fields, fieldTenantID)
	sourceCol := columnByName(sr.Fields, fieldSource)
	contentCol := columnByName(sr.Fields, fieldContent)

	for i := 0; i < sr.ResultCount; i++ {
		id, _ := sr.IDs.GetAsString(i)
		h := repository.VectorSearchHit{ID: id}
		if i < len(sr.Scores) {
			h.Score = sr.Scores[i]
		}
		if tenantCol != nil {
			h.TenantID, _ = tenantCol.GetAsString(i)
		}
		if sourceCol != nil {
			h.Source, _ = sourceCol.GetAsString(i)
		}
		if contentCol != nil {
			h.Content, _ = contentCol.GetAsString(i)
		}
		hits = append(hits, h)
	}
	return hits, nil
}

func columnByName(cols mclient.ResultSet, name string) entity.Column {
	for _, c := range cols {
		if c != nil && c.Name() == name {
			return c
		}
	}
	return nil
}

// truncateUTF8 截到 max 字节以内，不切断多字节字符
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

var _ repository.VectorStore = (*MilvusStore)(nil)
