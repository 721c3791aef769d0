package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ChatDesk/internal/config"
	"ChatDesk/internal/initial"
	aiService "ChatDesk/internal/modules/ai/application/service"
	aiRepository "ChatDesk/internal/modules/ai/domain/repository"
	"ChatDesk/internal/modules/ai/infrastructure/chunking"
	"ChatDesk/internal/modules/ai/infrastructure/embedding"
	"ChatDesk/internal/modules/ai/infrastructure/llm"
	"ChatDesk/internal/modules/ai/infrastructure/mq"
	"ChatDesk/internal/modules/ai/infrastructure/mq/kafka"
	aiPersistence "ChatDesk/internal/modules/ai/infrastructure/persistence"
	"ChatDesk/internal/modules/ai/infrastructure/pipeline"
	"ChatDesk/internal/modules/ai/infrastructure/queue"
	"ChatDesk/internal/modules/ai/infrastructure/vectordb"
	chatService "ChatDesk/internal/modules/chat/application/service"
	chatRepository "ChatDesk/internal/modules/chat/domain/repository"
	chatPersistence "ChatDesk/internal/modules/chat/infrastructure/persistence"
	tenantService "ChatDesk/internal/modules/tenant/application/service"
	tenantRepository "ChatDesk/internal/modules/tenant/domain/repository"
	tenantPersistence "ChatDesk/internal/modules/tenant/infrastructure/persistence"
	"ChatDesk/pkg/util/myjwt"
	"ChatDesk/pkg/ws"
	"ChatDesk/pkg/zlog"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 进程级依赖，启动时按配置组装一次
type App struct {
	Conf *config.Config

	DB        *gorm.DB
	Redis     *goredis.Client
	Milvus    mclient.Client
	Publisher mq.Publisher
	Hub       *ws.Hub
	Signer    *myjwt.Signer

	Tenants     tenantService.TenantService
	Knowledge   aiService.KnowledgeService
	AsyncIngest aiService.AsyncIngestService
	Router      chatService.RouterService
	Sessions    chatService.SessionService
	Messages    chatService.MessageService
}

// New MySQL/Milvus/Redis/Kafka 未配置时分别退化为内存存储、内存向量索引、无缓存、禁用异步入库
func New(ctx context.Context, conf *config.Config) (*App, error) {
	a := &App{Conf: conf, Hub: ws.NewHub(), Signer: myjwt.NewSigner(conf.JwtConfig)}

	db, err := initial.NewGormDB(conf)
	if err != nil {
		return nil, fmt.Errorf("init mysql: %w", err)
	}
	a.DB = db
	a.Redis = initial.NewRedisClient(ctx, conf)

	embedder, meta, err := embedding.NewEmbedderFromConfig(ctx, conf)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init embedder: %w", err)
	}
	zlog.Info("embedder ready", zap.String("provider", meta.Provider), zap.String("model", meta.Model), zap.Int("dim", meta.Dim))

	vs, err := a.newVectorStore(ctx, meta.Dim)
	if err != nil {
		a.Close()
		return nil, err
	}

	chunker, err := chunking.NewChunker(conf.KnowledgeConfig.Chunker, conf.KnowledgeConfig.ChunkSize, conf.KnowledgeConfig.ChunkOverlap)
	if err != nil {
		a.Close()
		return nil, err
	}

	var (
		tenantRepo    tenantRepository.TenantRepository
		knowledgeRepo aiRepository.KnowledgeRepository
		endUsers      chatRepository.EndUserRepository
		sessions      chatRepository.SessionRepository
		messages      chatRepository.MessageRepository
	)
	if db != nil {
		tenantRepo = tenantPersistence.NewTenantRepository(db)
		knowledgeRepo = aiPersistence.NewKnowledgeRepository(db)
		endUsers = chatPersistence.NewEndUserRepository(db)
		sessions = chatPersistence.NewSessionRepository(db)
		messages = chatPersistence.NewMessageRepository(db)
	} else {
		mem := chatPersistence.NewMemoryStore()
		tenantRepo = tenantPersistence.NewMemoryTenantRepository()
		knowledgeRepo = aiPersistence.NewMemoryKnowledgeRepository()
		endUsers, sessions, messages = mem.EndUsers(), mem.Sessions(), mem.Messages()
	}
	tenantRepo = tenantPersistence.NewCachedTenantRepository(tenantRepo, a.Redis, time.Duration(conf.RedisConfig.TenantCacheSecs)*time.Second)

	a.Tenants = tenantService.NewTenantService(tenantRepo, a.Signer)
	a.Knowledge, err = aiService.NewKnowledgeService(knowledgeRepo, vs, embedder, chunker, meta.Dim)
	if err != nil {
		a.Close()
		return nil, err
	}

	if len(conf.KafkaConfig.Brokers) > 0 {
		pub, err := kafka.NewPublisher(conf.KafkaConfig)
		if err != nil {
			zlog.Warn("kafka publisher unavailable, async ingest disabled", zap.Error(err))
		} else {
			a.Publisher = pub
		}
	}
	a.AsyncIngest = aiService.NewAsyncIngestService(a.Publisher, conf.KafkaConfig.IngestTopic)

	// 对话模型初始化失败不阻止启动，AI 分支全部降级为致歉文案
	chatModel, cmMeta, err := llm.NewChatModelFromConfig(ctx, conf)
	if err != nil {
		zlog.Warn("chat model unavailable, ai replies will fall back", zap.Error(err))
		chatModel = nil
	} else {
		zlog.Info("chat model ready", zap.String("provider", cmMeta.Provider), zap.String("model", cmMeta.Model))
	}
	replier, err := pipeline.NewReplyPipeline(a.Knowledge, chatModel, pipeline.ReplyOptions{
		TopK:            conf.ChatConfig.RetrieveTopK,
		RetrieveTimeout: time.Duration(conf.ChatConfig.RetrieveTimeoutSeconds) * time.Second,
		GenerateTimeout: time.Duration(conf.ChatConfig.GenerateTimeoutSeconds) * time.Second,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build reply pipeline: %w", err)
	}

	a.Router = chatService.NewRouterService(chatService.RouterDeps{
		Tenants:       a.Tenants,
		EndUsers:      endUsers,
		Sessions:      sessions,
		Messages:      messages,
		Replier:       replier,
		Notifier:      a.Hub,
		HistoryWindow: conf.ChatConfig.HistoryWindow,
		TopK:          conf.ChatConfig.RetrieveTopK,
	})
	a.Sessions = chatService.NewSessionService(endUsers, sessions, messages, a.Hub)
	a.Messages = chatService.NewMessageService(sessions, messages)
	return a, nil
}

func (a *App) newVectorStore(ctx context.Context, dim int) (aiRepository.VectorStore, error) {
	cli, err := initial.NewMilvusClient(ctx, a.Conf)
	if err != nil {
		return nil, fmt.Errorf("init milvus: %w", err)
	}
	if cli == nil {
		zlog.Info("milvus not configured, using in-memory vector index")
		return vectordb.NewMemoryStore(dim), nil
	}
	a.Milvus = cli
	// 切片全文要原样写入 content 列，超长配置直接拒绝
	size := a.Conf.KnowledgeConfig.ChunkSize
	if size <= 0 {
		size = chunking.DefaultChunkSize
	}
	if err := vectordb.ValidateChunkSize(size); err != nil {
		return nil, err
	}
	metric := entity.MetricType(strings.ToUpper(strings.TrimSpace(a.Conf.MilvusConfig.MetricType)))
	return vectordb.NewMilvusStore(cli, a.Conf.MilvusConfig.CollectionName, initial.MilvusVectorField, dim, metric)
}

// NewIngestWorker 构建 Kafka 入库消费者，worker 子命令使用
func (a *App) NewIngestWorker() (*queue.IngestConsumerWorker, error) {
	if len(a.Conf.KafkaConfig.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not configured")
	}
	if err := kafka.EnsureIngestTopic(a.Conf.KafkaConfig); err != nil {
		zlog.Warn("ensure ingest topic failed", zap.Error(err))
	}
	consumer, err := kafka.NewConsumer(a.Conf.KafkaConfig)
	if err != nil {
		return nil, err
	}
	return queue.NewIngestConsumerWorker(consumer, a.Knowledge), nil
}

func (a *App) Close() {
	if a.Publisher != nil {
		_ = a.Publisher.Close()
	}
	if a.Milvus != nil {
		_ = a.Milvus.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
