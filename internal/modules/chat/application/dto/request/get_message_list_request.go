package request

// GetMessageListRequest after 为 RFC3339 时间，挂件轮询时只取增量
type GetMessageListRequest struct {
	SessionId string `form:"sessionId" binding:"required"`
	After     string `form:"after"`
	Limit     int    `form:"limit"`
}

type ListSessionsRequest struct {
	Status string `form:"status"`
}
