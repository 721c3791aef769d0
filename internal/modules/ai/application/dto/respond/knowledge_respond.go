package respond

import "time"

type KnowledgeChunkItem struct {
	Id         string    `json:"id"`
	Source     string    `json:"source"`
	ChunkIndex int       `json:"chunkIndex"`
	Content    string    `json:"content"`
	ByteSize   int       `json:"byteSize"`
	VectorId   string    `json:"vectorId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type KnowledgeSourceItem struct {
	Source     string    `json:"source"`
	ChunkCount int64     `json:"chunkCount"`
	TotalBytes int64     `json:"totalBytes"`
	LastAdded  time.Time `json:"lastAdded"`
}

type AddKnowledgeRespond struct {
	Chunk *KnowledgeChunkItem `json:"chunk"`
}

type QueryKnowledgeRespond struct {
	Chunks []string `json:"chunks"`
}

type DeleteKnowledgeRespond struct {
	Deleted int64 `json:"deleted"`
}

type EnqueueKnowledgeRespond struct {
	EventId string `json:"eventId"`
}
