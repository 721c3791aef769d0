package rag

import "time"

// KnowledgeChunk 知识切片的关系型记录，VectorId 指向向量库中的同名条目
type KnowledgeChunk struct {
	Id         string    `gorm:"column:id;type:char(20);primaryKey"`
	TenantId   string    `gorm:"column:tenant_id;type:char(20);not null;index:idx_knowledge_chunk_source"`
	Source     string    `gorm:"column:source;type:varchar(255);not null;index:idx_knowledge_chunk_source"`
	ChunkIndex int       `gorm:"column:chunk_index;type:int;not null"`
	Content    string    `gorm:"column:content;type:mediumtext"`
	ByteSize   int       `gorm:"column:byte_size;type:int;not null;default:0"`
	VectorId   string    `gorm:"column:vector_id;type:varchar(128)"`
	CreatedAt  time.Time `gorm:"column:created_at;type:datetime(3);not null"`
}

func (KnowledgeChunk) TableName() string { return "knowledge_chunk" }

// SourceSummary 按来源聚合的切片统计
type SourceSummary struct {
	Source     string    `gorm:"column:source"`
	ChunkCount int64     `gorm:"column:chunk_count"`
	TotalBytes int64     `gorm:"column:total_bytes"`
	LastAdded  time.Time `gorm:"column:last_added"`
}

const EventTypeKnowledgeIngest = "knowledge.ingest"

// IngestEvent 异步入库消息体（Kafka value）
type IngestEvent struct {
	EventId   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	TenantId  string    `json:"tenant_id"`
	Source    string    `json:"source"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
