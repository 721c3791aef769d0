package embedding

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"ChatDesk/internal/config"

	arkEmbed "github.com/cloudwego/eino-ext/components/embedding/ark"
	dashscopeEmbed "github.com/cloudwego/eino-ext/components/embedding/dashscope"
	openaiEmbed "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
)

type EmbedderMeta struct {
	Provider string
	Model    string
	Dim      int
}

// NewEmbedderFromConfig 按 aiConfig.embedding.provider 构建向量模型
func NewEmbedderFromConfig(ctx context.Context, conf *config.Config) (embedding.Embedder, EmbedderMeta, error) {
	if conf == nil {
		return nil, EmbedderMeta{}, fmt.Errorf("nil config")
	}
	ec := conf.AIConfig.Embedding
	dim := conf.MilvusConfig.VectorDim
	if ec.Dimensions > 0 {
		dim = ec.Dimensions
	}
	provider := strings.ToLower(strings.TrimSpace(ec.Provider))
	model := strings.TrimSpace(ec.Model)
	timeout := 30 * time.Second
	if ec.TimeoutSeconds > 0 {
		timeout = time.Duration(ec.TimeoutSeconds) * time.Second
	}

	switch provider {
	case "", "mock":
		return NewHashingEmbedder(dim), EmbedderMeta{Provider: "mock", Model: "hashing", Dim: dim}, nil

	case "openai", "local":
		apiKey := orEnv(ec.APIKey, "OPENAI_API_KEY")
		baseURL := orEnv(ec.BaseURL, "OPENAI_BASE_URL")
		if model == "" {
			model = orEnv("", "OPENAI_EMBED_MODEL")
		}
		if provider == "local" {
			// OpenAI 兼容的本地服务（Ollama、vLLM 等）不校验密钥
			if baseURL == "" {
				return nil, EmbedderMeta{}, fmt.Errorf("local embedding missing baseURL")
			}
			if apiKey == "" {
				apiKey = "local"
			}
		}
		if apiKey == "" || model == "" {
			return nil, EmbedderMeta{}, fmt.Errorf("%s embedding missing apiKey/model", provider)
		}
		localDim := dim
		em, err := openaiEmbed.NewEmbedder(ctx, &openaiEmbed.EmbeddingConfig{
			APIKey:     apiKey,
			Model:      model,
			BaseURL:    baseURL,
			Timeout:    timeout,
			Dimensions: &localDim,
		})
		if err != nil {
			return nil, EmbedderMeta{}, err
		}
		return em, EmbedderMeta{Provider: provider, Model: model, Dim: dim}, nil

	case "ark":
		apiKey := orEnv(ec.APIKey, "ARK_API_KEY")
		if model == "" {
			model = orEnv("", "ARK_EMBED_MODEL")
		}
		if apiKey == "" || model == "" {
			return nil, EmbedderMeta{}, fmt.Errorf("ark embedding missing apiKey/model")
		}
		em, err := arkEmbed.NewEmbedder(ctx, &arkEmbed.EmbeddingConfig{
			APIKey:  apiKey,
			Model:   model,
			BaseURL: orEnv(ec.BaseURL, "ARK_BASE_URL"),
		})
		if err != nil {
			return nil, EmbedderMeta{}, err
		}
		return em, EmbedderMeta{Provider: "ark", Model: model, Dim: dim}, nil

	case "dashscope":
		apiKey := orEnv(ec.APIKey, "DASHSCOPE_API_KEY")
		if model == "" {
			model = orEnv("", "DASHSCOPE_EMBED_MODEL")
		}
		if apiKey == "" || model == "" {
			return nil, EmbedderMeta{}, fmt.Errorf("dashscope embedding missing apiKey/model")
		}
		localDim := dim
		em, err := dashscopeEmbed.NewEmbedder(ctx, &dashscopeEmbed.EmbeddingConfig{
			Model:      model,
			APIKey:     apiKey,
			Dimensions: &localDim,
		})
		if err != nil {
			return nil, EmbedderMeta{}, err
		}
		return em, EmbedderMeta{Provider: "dashscope", Model: model, Dim: dim}, nil

	default:
		return nil, EmbedderMeta{}, fmt.Errorf("unknown embedding provider: %s", provider)
	}
}

func orEnv(v string, key string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return strings.TrimSpace(os.Getenv(key))
}
