package respond

import "time"

type CreateTenantRespond struct {
	TenantId string `json:"tenantId"`
	Name     string `json:"name"`
	ApiKey   string `json:"apiKey"`
	// Token 运营后台使用的 JWT
	Token string `json:"token"`
}

type ChatConfigItem struct {
	FallbackMessage string  `json:"fallbackMessage"`
	MemoryType      string  `json:"memoryType"`
	MemoryValue     int     `json:"memoryValue"`
	Temperature     float32 `json:"temperature"`
}

type WidgetConfigItem struct {
	Title          string   `json:"title"`
	PrimaryColor   string   `json:"primaryColor"`
	WelcomeMessage string   `json:"welcomeMessage"`
	Position       string   `json:"position"`
	LeadCapture    bool     `json:"leadCapture"`
	LeadFields     []string `json:"leadFields"`
	AllowedOrigins []string `json:"allowedOrigins"`
}

type TenantSettingsRespond struct {
	TenantId     string           `json:"tenantId"`
	Name         string           `json:"name"`
	SystemPrompt string           `json:"systemPrompt"`
	ChatConfig   ChatConfigItem   `json:"chatConfig"`
	WidgetConfig WidgetConfigItem `json:"widgetConfig"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// WidgetPublicConfig 暴露给挂件脚本，不含密钥和提示词
type WidgetPublicConfig struct {
	Title          string   `json:"title"`
	PrimaryColor   string   `json:"primaryColor"`
	WelcomeMessage string   `json:"welcomeMessage"`
	Position       string   `json:"position"`
	LeadCapture    bool     `json:"leadCapture"`
	LeadFields     []string `json:"leadFields"`
}
