package request

type AddKnowledgeRequest struct {
	Content string `json:"content" binding:"required"`
	Source  string `json:"source"`
}

type QueryKnowledgeRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"topK"`
}

type DeleteKnowledgeRequest struct {
	Source string `json:"source" form:"source" binding:"required"`
}
