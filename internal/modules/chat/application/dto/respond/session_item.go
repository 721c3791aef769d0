package respond

import "time"

type SessionItem struct {
	Id            string     `json:"id"`
	EndUserId     string     `json:"endUserId"`
	EndUserName   string     `json:"endUserName"`
	Channel       string     `json:"channel"`
	Status        string     `json:"status"`
	CurrentMood   string     `json:"currentMood,omitempty"`
	UnreadCount   int        `json:"unreadCount"`
	Restricted    bool       `json:"restricted"`
	Blocked       bool       `json:"blocked"`
	LastMessage   string     `json:"lastMessage"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// SessionEvent 通过 WebSocket 推送给运营后台
type SessionEvent struct {
	Type      string       `json:"type"`
	SessionId string       `json:"sessionId"`
	Status    string       `json:"status,omitempty"`
	Message   *MessageItem `json:"message,omitempty"`
}

const (
	EventMessageCreated = "message.created"
	EventStatusChanged  = "session.status_changed"
	EventSessionDeleted = "session.deleted"
)
