package request

type CreateTenantRequest struct {
	Name         string `json:"name" binding:"required"`
	SystemPrompt string `json:"systemPrompt"`
}

// UpdateSettingsRequest 指针字段为 nil 表示不修改
type UpdateSettingsRequest struct {
	Name         *string              `json:"name"`
	SystemPrompt *string              `json:"systemPrompt"`
	ChatConfig   *ChatConfigRequest   `json:"chatConfig"`
	WidgetConfig *WidgetConfigRequest `json:"widgetConfig"`
}

type ChatConfigRequest struct {
	FallbackMessage string  `json:"fallbackMessage"`
	MemoryType      string  `json:"memoryType"`
	MemoryValue     int     `json:"memoryValue"`
	Temperature     float32 `json:"temperature"`
}

type WidgetConfigRequest struct {
	Title          string   `json:"title"`
	PrimaryColor   string   `json:"primaryColor"`
	WelcomeMessage string   `json:"welcomeMessage"`
	Position       string   `json:"position"`
	LeadCapture    bool     `json:"leadCapture"`
	LeadFields     []string `json:"leadFields"`
	AllowedOrigins []string `json:"allowedOrigins"`
}
