package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const DefaultConfigPath = "configs/config_local.toml"

type MainConfig struct {
	AppName     string   `toml:"appName"`
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	EnableTLS   bool     `toml:"enableTLS"`
	CertFile    string   `toml:"certFile"`
	KeyFile     string   `toml:"keyFile"`
	CorsOrigins []string `toml:"corsOrigins"`
}

// MysqlConfig Host 为空时使用进程内存储
type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

type LogConfig struct {
	LogPath string `toml:"logPath"`
	Level   string `toml:"level"`
}

type JwtConfig struct {
	Key         string `toml:"key"`
	ExpireHours int    `toml:"expireHours"`
	Issuer      string `toml:"issuer"`
}

// MilvusConfig Address 为空时使用进程内向量索引
type MilvusConfig struct {
	Address        string `toml:"address"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	DBName         string `toml:"dbName"`
	CollectionName string `toml:"collectionName"`
	VectorDim      int    `toml:"vectorDim"`
	MetricType     string `toml:"metricType"`
}

type KafkaConfig struct {
	Brokers         []string `toml:"brokers"`
	ClientID        string   `toml:"clientID"`
	IngestTopic     string   `toml:"ingestTopic"`
	ConsumerGroupID string   `toml:"consumerGroupID"`
	Partitions      int32    `toml:"partitions"`
	Replication     int16    `toml:"replication"`
}

type RedisConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Password        string `toml:"password"`
	DB              int    `toml:"db"`
	PoolSize        int    `toml:"poolSize"`
	MinIdleConns    int    `toml:"minIdleConns"`
	TenantCacheSecs int    `toml:"tenantCacheSecs"`
}

type AIEmbeddingConfig struct {
	Provider        string `toml:"provider"`
	APIKey          string `toml:"apiKey"`
	AccessKey       string `toml:"accessKey"`
	SecretKey       string `toml:"secretKey"`
	BaseURL         string `toml:"baseURL"`
	Region          string `toml:"region"`
	Model           string `toml:"model"`
	Dimensions      int    `toml:"dimensions"`
	TimeoutSeconds  int    `toml:"timeoutSeconds"`
	RetryTimes      int    `toml:"retryTimes"`
	ByAzure         bool   `toml:"byAzure"`
	AzureAPIVersion string `toml:"azureApiVersion"`
}

type AIChatModelConfig struct {
	Provider        string `toml:"provider"`
	APIKey          string `toml:"apiKey"`
	AccessKey       string `toml:"accessKey"`
	SecretKey       string `toml:"secretKey"`
	BaseURL         string `toml:"baseURL"`
	Region          string `toml:"region"`
	Model           string `toml:"model"`
	MaxTokens       int    `toml:"maxTokens"`
	TimeoutSeconds  int    `toml:"timeoutSeconds"`
	RetryTimes      int    `toml:"retryTimes"`
	ByAzure         bool   `toml:"byAzure"`
	AzureAPIVersion string `toml:"azureApiVersion"`
}

type AIConfig struct {
	Embedding AIEmbeddingConfig `toml:"embedding"`
	ChatModel AIChatModelConfig `toml:"chatModel"`
}

// ChatConfig 会话路由相关参数
type ChatConfig struct {
	HistoryWindow          int `toml:"historyWindow"`
	RetrieveTopK           int `toml:"retrieveTopK"`
	RetrieveTimeoutSeconds int `toml:"retrieveTimeoutSeconds"`
	GenerateTimeoutSeconds int `toml:"generateTimeoutSeconds"`
}

// KnowledgeConfig 知识切片参数
type KnowledgeConfig struct {
	Chunker      string `toml:"chunker"` // sentence | recursive
	ChunkSize    int    `toml:"chunkSize"`
	ChunkOverlap int    `toml:"chunkOverlap"`
}

type Config struct {
	MainConfig      `toml:"mainConfig"`
	MysqlConfig     `toml:"mysqlConfig"`
	JwtConfig       `toml:"jwtConfig"`
	MilvusConfig    `toml:"milvusConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	AIConfig        `toml:"aiConfig"`
	LogConfig       `toml:"logConfig"`
	RedisConfig     `toml:"redisConfig"`
	ChatConfig      `toml:"chatConfig"`
	KnowledgeConfig `toml:"knowledgeConfig"`
}

var (
	config *Config
	mu     sync.Mutex
)

// Load 读取 TOML 配置并用环境变量覆盖；文件缺失时使用默认值
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if strings.TrimSpace(path) == "" {
		path = DefaultConfigPath
	}
	c := Default()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, c); err != nil {
			return nil, err
		}
	} else {
		log.Printf("config file %s not found, using defaults", path)
	}
	applyEnv(c)

	mu.Lock()
	config = c
	mu.Unlock()
	return c, nil
}

func GetConfig() *Config {
	mu.Lock()
	defer mu.Unlock()
	if config == nil {
		config = Default()
		applyEnv(config)
	}
	return config
}

// SetConfig 测试中注入配置
func SetConfig(c *Config) {
	mu.Lock()
	config = c
	mu.Unlock()
}

func Default() *Config {
	return &Config{
		MainConfig: MainConfig{AppName: "ChatDesk", Host: "0.0.0.0", Port: 8000},
		JwtConfig:  JwtConfig{ExpireHours: 24, Issuer: "ChatDesk"},
		MilvusConfig: MilvusConfig{
			DBName:         "default",
			CollectionName: "chatdesk_knowledge",
			VectorDim:      1536,
			MetricType:     "COSINE",
		},
		KafkaConfig: KafkaConfig{
			ClientID:        "chatdesk",
			IngestTopic:     "chatdesk.knowledge.ingest",
			ConsumerGroupID: "chatdesk-ingest",
			Partitions:      3,
			Replication:     1,
		},
		RedisConfig: RedisConfig{Port: 6379, TenantCacheSecs: 60},
		AIConfig: AIConfig{
			Embedding: AIEmbeddingConfig{Provider: "mock", Dimensions: 1536, TimeoutSeconds: 30},
			ChatModel: AIChatModelConfig{Provider: "openai", Model: "gpt-4o-mini", TimeoutSeconds: 60},
		},
		LogConfig: LogConfig{Level: "info"},
		ChatConfig: ChatConfig{
			HistoryWindow:          10,
			RetrieveTopK:           3,
			RetrieveTimeoutSeconds: 10,
			GenerateTimeoutSeconds: 60,
		},
		KnowledgeConfig: KnowledgeConfig{Chunker: "sentence", ChunkSize: 500, ChunkOverlap: 50},
	}
}

func applyEnv(c *Config) {
	setString(&c.MainConfig.Host, "CHATDESK_HOST")
	setInt(&c.MainConfig.Port, "PORT")
	setString(&c.MysqlConfig.Host, "MYSQL_HOST")
	setInt(&c.MysqlConfig.Port, "MYSQL_PORT")
	setString(&c.MysqlConfig.User, "MYSQL_USER")
	setString(&c.MysqlConfig.Password, "MYSQL_PASSWORD")
	setString(&c.MysqlConfig.DatabaseName, "MYSQL_DATABASE")
	setString(&c.JwtConfig.Key, "JWT_SECRET")
	setString(&c.MilvusConfig.Address, "MILVUS_ADDRESS")
	setString(&c.RedisConfig.Host, "REDIS_HOST")
	setString(&c.RedisConfig.Password, "REDIS_PASSWORD")
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		c.KafkaConfig.Brokers = strings.Split(v, ",")
	}
	setString(&c.LogConfig.LogPath, "LOG_PATH")
	setString(&c.LogConfig.Level, "LOG_LEVEL")
	setString(&c.AIConfig.Embedding.Provider, "EMBEDDING_PROVIDER")
	setString(&c.AIConfig.ChatModel.Provider, "CHAT_MODEL_PROVIDER")
	setString(&c.AIConfig.ChatModel.Model, "CHAT_MODEL")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
