package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"ChatDesk/internal/config"

	arkModel "github.com/cloudwego/eino-ext/components/model/ark"
	geminiModel "github.com/cloudwego/eino-ext/components/model/gemini"
	openaiModel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

type ChatModelMeta struct {
	Provider string
	Model    string
}

// NewChatModelFromConfig 按 aiConfig.chatModel.provider 构建对话模型。
// 租户的 temperature 不在这里传入，各 provider 使用默认采样参数。
func NewChatModelFromConfig(ctx context.Context, conf *config.Config) (model.BaseChatModel, ChatModelMeta, error) {
	if conf == nil {
		return nil, ChatModelMeta{}, fmt.Errorf("nil config")
	}
	cc := conf.AIConfig.ChatModel
	provider := strings.ToLower(strings.TrimSpace(cc.Provider))
	modelName := strings.TrimSpace(cc.Model)
	timeout := 2 * time.Minute
	if cc.TimeoutSeconds > 0 {
		timeout = time.Duration(cc.TimeoutSeconds) * time.Second
	}

	switch provider {
	case "", "disabled", "none":
		return nil, ChatModelMeta{}, fmt.Errorf("chat model provider not configured")

	case "mock":
		return NewStaticChatModel(""), ChatModelMeta{Provider: "mock", Model: "static"}, nil

	case "openai":
		apiKey := orEnv(cc.APIKey, "OPENAI_API_KEY")
		if modelName == "" {
			modelName = orEnv("", "OPENAI_MODEL")
		}
		if apiKey == "" || modelName == "" {
			return nil, ChatModelMeta{}, fmt.Errorf("openai chat model missing apiKey/model")
		}
		cfg := &openaiModel.ChatModelConfig{
			APIKey:     apiKey,
			Model:      modelName,
			BaseURL:    orEnv(cc.BaseURL, "OPENAI_BASE_URL"),
			ByAzure:    cc.ByAzure,
			APIVersion: strings.TrimSpace(cc.AzureAPIVersion),
			Timeout:    timeout,
		}
		if cc.MaxTokens > 0 {
			maxTokens := cc.MaxTokens
			cfg.MaxTokens = &maxTokens
		}
		cm, err := openaiModel.NewChatModel(ctx, cfg)
		if err != nil {
			return nil, ChatModelMeta{}, err
		}
		return cm, ChatModelMeta{Provider: "openai", Model: modelName}, nil

	case "ark":
		apiKey := orEnv(cc.APIKey, "ARK_API_KEY")
		accessKey := orEnv(cc.AccessKey, "ARK_ACCESS_KEY")
		secretKey := orEnv(cc.SecretKey, "ARK_SECRET_KEY")
		if modelName == "" {
			modelName = orEnv("", "ARK_MODEL_ID")
		}
		if apiKey == "" && (accessKey == "" || secretKey == "") {
			return nil, ChatModelMeta{}, fmt.Errorf("ark chat model missing apiKey or accessKey/secretKey")
		}
		if modelName == "" {
			return nil, ChatModelMeta{}, fmt.Errorf("ark chat model missing model")
		}
		retryTimes := 2
		if cc.RetryTimes > 0 {
			retryTimes = cc.RetryTimes
		}
		cm, err := arkModel.NewChatModel(ctx, &arkModel.ChatModelConfig{
			APIKey:     apiKey,
			AccessKey:  accessKey,
			SecretKey:  secretKey,
			Model:      modelName,
			BaseURL:    orEnv(cc.BaseURL, "ARK_BASE_URL"),
			Region:     orEnv(cc.Region, "ARK_REGION"),
			Timeout:    &timeout,
			RetryTimes: &retryTimes,
		})
		if err != nil {
			return nil, ChatModelMeta{}, err
		}
		return cm, ChatModelMeta{Provider: "ark", Model: modelName}, nil

	case "gemini":
		apiKey := orEnv(cc.APIKey, "GEMINI_API_KEY")
		if modelName == "" {
			modelName = "gemini-2.0-flash"
		}
		if apiKey == "" {
			return nil, ChatModelMeta{}, fmt.Errorf("gemini chat model missing apiKey")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, ChatModelMeta{}, fmt.Errorf("create gemini client: %w", err)
		}
		cfg := &geminiModel.Config{
			Client: client,
			Model:  modelName,
		}
		if cc.MaxTokens > 0 {
			maxTokens := cc.MaxTokens
			cfg.MaxTokens = &maxTokens
		}
		cm, err := geminiModel.NewChatModel(ctx, cfg)
		if err != nil {
			return nil, ChatModelMeta{}, err
		}
		return cm, ChatModelMeta{Provider: "gemini", Model: modelName}, nil

	default:
		return nil, ChatModelMeta{}, fmt.Errorf("unknown chat model provider: %s", provider)
	}
}

func orEnv(v string, key string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return strings.TrimSpace(os.Getenv(key))
}
