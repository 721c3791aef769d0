package initial

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ChatDesk/internal/config"
	"ChatDesk/internal/modules/ai/infrastructure/vectordb"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	MilvusVectorField = "vector"
)

// NewMilvusClient 连接 Milvus 并确保库、集合与索引存在；Address 为空时返回 (nil, nil)
func NewMilvusClient(ctx context.Context, conf *config.Config) (mclient.Client, error) {
	if strings.TrimSpace(conf.MilvusConfig.Address) == "" {
		return nil, nil
	}
	return newMilvusClientAndEnsureSchema(ctx, conf)
}

func newMilvusClientAndEnsureSchema(ctx context.Context, conf *config.Config) (mclient.Client, error) {
	addr := strings.TrimSpace(conf.MilvusConfig.Address)
	dbName := strings.TrimSpace(conf.MilvusConfig.DBName)
	collection := strings.TrimSpace(conf.MilvusConfig.CollectionName)

	if dbName == "" {
		dbName = "default"
	}
	if collection == "" {
		collection = "chatdesk_knowledge"
	}

	dim := conf.MilvusConfig.VectorDim
	if conf.AIConfig.Embedding.Dimensions > 0 {
		dim = conf.AIConfig.Embedding.Dimensions
	}
	if dim <= 0 {
		dim = 1536
	}

	defaultCli, err := mclient.NewClient(ctx, mclient.Config{
		Address:  addr,
		Username: strings.TrimSpace(conf.MilvusConfig.Username),
		Password: strings.TrimSpace(conf.MilvusConfig.Password),
		DBName:   "default",
	})
	if err != nil {
		return nil, err
	}

	dbs, err := defaultCli.ListDatabases(ctx)
	if err != nil {
		_ = defaultCli.Close()
		return nil, err
	}
	exists := false
	for _, db := range dbs {
		if db.Name == dbName {
			exists = true
			break
		}
	}
	if !exists {
		if err := defaultCli.CreateDatabase(ctx, dbName); err != nil {
			_ = defaultCli.Close()
			return nil, err
		}
	}

	cli, err := mclient.NewClient(ctx, mclient.Config{
		Address:  addr,
		Username: strings.TrimSpace(conf.MilvusConfig.Username),
		Password: strings.TrimSpace(conf.MilvusConfig.Password),
		DBName:   dbName,
	})
	if err != nil {
		_ = defaultCli.Close()
		return nil, err
	}

	cols, err := cli.ListCollections(ctx)
	if err != nil {
		_ = defaultCli.Close()
		_ = cli.Close()
		return nil, err
	}
	collExists := false
	for _, c := range cols {
		if c.Name == collection {
			collExists = true
			break
		}
	}

	if !collExists {
		schema := &entity.Schema{
			CollectionName: collection,
			Description:    "ChatDesk tenant knowledge chunks",
			Fields: []*entity.Field{
				{
					Name:       "id",
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					TypeParams: map[string]string{"max_length": "128"},
				},
				{
					Name:       MilvusVectorField,
					DataType:   entity.FieldTypeFloatVector,
					TypeParams: map[string]string{entity.TypeParamDim: fmt.Sprintf("%d", dim)},
				},
				{
					Name:       "tenant_id",
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "20"},
				},
				{
					Name:       "source",
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": strconv.Itoa(vectordb.MaxSourceBytes)},
				},
				{
					Name:       "source_prefix",
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": strconv.Itoa(vectordb.MaxSourcePrefixBytes)},
				},
				{
					Name:       "content",
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": strconv.Itoa(vectordb.MaxContentBytes)},
				},
			},
		}

		if err := cli.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			_ = defaultCli.Close()
			_ = cli.Close()
			return nil, err
		}

		idx, err := entity.NewIndexAUTOINDEX(entity.COSINE)
		if err != nil {
			_ = defaultCli.Close()
			_ = cli.Close()
			return nil, err
		}
		if err := cli.CreateIndex(ctx, collection, MilvusVectorField, idx, false); err != nil {
			_ = defaultCli.Close()
			_ = cli.Close()
			return nil, err
		}
	}

	_ = defaultCli.Close()

	if err := cli.LoadCollection(ctx, collection, false); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("load collection %s: %w", collection, err)
	}

	return cli, nil
}
