package entity

import (
	"database/sql"
	"time"
)

const (
	SessionStatusActive         = "active"
	SessionStatusAgentRequested = "agent_requested"
	SessionStatusAgentConnected = "agent_connected"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

const (
	ChannelWidget    = "widget"
	ChannelMessenger = "messenger"
	ChannelWhatsApp  = "whatsapp"
)

// EndUser 租户下的访客，(tenant_id, external_id) 唯一
type EndUser struct {
	Id         string    `gorm:"column:id;type:char(20);primaryKey"`
	TenantId   string    `gorm:"column:tenant_id;type:char(20);not null;uniqueIndex:uniq_end_user_external"`
	ExternalId string    `gorm:"column:external_id;type:varchar(160);not null;uniqueIndex:uniq_end_user_external"`
	Name       string    `gorm:"column:name;type:varchar(128);not null"`
	Avatar     string    `gorm:"column:avatar;type:varchar(255)"`
	Channel    string    `gorm:"column:channel;type:varchar(20);not null;default:widget"`
	Blocked    bool      `gorm:"column:blocked;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at;type:datetime;not null"`
}

func (EndUser) TableName() string { return "end_user" }

type ChatSession struct {
	Id            string         `gorm:"column:id;type:char(20);primaryKey"`
	TenantId      string         `gorm:"column:tenant_id;type:char(20);not null;index:idx_chat_session_tenant"`
	EndUserId     string         `gorm:"column:end_user_id;type:char(20);not null;index:idx_chat_session_end_user"`
	Status        string         `gorm:"column:status;type:varchar(20);not null;default:active"`
	CurrentMood   sql.NullString `gorm:"column:current_mood;type:varchar(20)"`
	UnreadCount   int            `gorm:"column:unread_count;not null;default:0"`
	Restricted    bool           `gorm:"column:restricted;not null;default:false"`
	LastMessage   string         `gorm:"column:last_message;type:varchar(255)"`
	LastMessageAt sql.NullTime   `gorm:"column:last_message_at;type:datetime(3)"`
	CreatedAt     time.Time      `gorm:"column:created_at;type:datetime(3);not null;index:idx_chat_session_end_user"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;type:datetime(3);not null"`
}

func (ChatSession) TableName() string { return "chat_session" }

type ChatMessage struct {
	Id             string         `gorm:"column:id;type:char(20);primaryKey"`
	SessionId      string         `gorm:"column:session_id;type:char(20);not null;index:idx_chat_message_session"`
	Role           string         `gorm:"column:role;type:varchar(20);not null"`
	Content        string         `gorm:"column:content;type:mediumtext"`
	AuthorName     string         `gorm:"column:author_name;type:varchar(64)"`
	SentimentScore sql.NullInt32  `gorm:"column:sentiment_score"`
	SentimentLabel sql.NullString `gorm:"column:sentiment_label;type:varchar(20)"`
	TokenCount     int            `gorm:"column:token_count;not null;default:0"`
	ByteSize       int            `gorm:"column:byte_size;not null;default:0"`
	CreatedAt      time.Time      `gorm:"column:created_at;type:datetime(6);not null;index:idx_chat_message_session"`
}

func (ChatMessage) TableName() string { return "chat_message" }

// EstimateTokens 按 4 字节 1 token 粗略估算
func EstimateTokens(content string) int {
	return (len(content) + 3) / 4
}
