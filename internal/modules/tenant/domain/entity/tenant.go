package entity

import (
	"strings"
	"time"
)

const (
	MemoryTypeCount = "count"
	MemoryTypeTime  = "time"
)

// ChatConfig 租户的对话参数；MemoryType/MemoryValue/Temperature 目前仅存储，路由使用固定窗口
type ChatConfig struct {
	FallbackMessage string  `json:"fallbackMessage"`
	MemoryType      string  `json:"memoryType"`
	MemoryValue     int     `json:"memoryValue"`
	Temperature     float32 `json:"temperature"`
}

type WidgetConfig struct {
	Title          string   `json:"title"`
	PrimaryColor   string   `json:"primaryColor"`
	WelcomeMessage string   `json:"welcomeMessage"`
	Position       string   `json:"position"`
	LeadCapture    bool     `json:"leadCapture"`
	LeadFields     []string `json:"leadFields"`
	AllowedOrigins []string `json:"allowedOrigins"`
}

// AllowsOrigin 未配置白名单时放行所有来源
func (w WidgetConfig) AllowsOrigin(origin string) bool {
	if len(w.AllowedOrigins) == 0 {
		return true
	}
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" {
		return false
	}
	for _, o := range w.AllowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

type Tenant struct {
	Id           string       `gorm:"column:id;type:char(20);primaryKey"`
	Name         string       `gorm:"column:name;type:varchar(128);not null"`
	ApiKey       string       `gorm:"column:api_key;type:varchar(64);not null;uniqueIndex:uniq_tenant_api_key"`
	SystemPrompt string       `gorm:"column:system_prompt;type:text"`
	ChatConfig   ChatConfig   `gorm:"column:chat_config;type:json;serializer:json"`
	WidgetConfig WidgetConfig `gorm:"column:widget_config;type:json;serializer:json"`
	CreatedAt    time.Time    `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt    time.Time    `gorm:"column:updated_at;type:datetime;not null"`
}

func (Tenant) TableName() string { return "tenant" }
