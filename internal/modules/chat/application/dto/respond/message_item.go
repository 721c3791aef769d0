package respond

import "time"

type MessageItem struct {
	Id             string    `json:"id"`
	SessionId      string    `json:"sessionId"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	AuthorName     string    `json:"authorName,omitempty"`
	SentimentScore *int32    `json:"sentimentScore,omitempty"`
	SentimentLabel string    `json:"sentimentLabel,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ProcessMessageRespond Reply 为 nil 表示不回复（人工坐席已接入或访客被拉黑）
type ProcessMessageRespond struct {
	SessionId string  `json:"sessionId"`
	Reply     *string `json:"reply"`
	Blocked   bool    `json:"blocked,omitempty"`
}
