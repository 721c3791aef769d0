package request

// SendMessageRequest 挂件或渠道 webhook 发来的访客消息，租户由 API Key 中间件确定
type SendMessageRequest struct {
	Message     string `json:"message" binding:"required"`
	SenderId    string `json:"senderId" binding:"required"`
	Channel     string `json:"channel"`
	DisplayName string `json:"displayName"`
	AvatarUrl   string `json:"avatarUrl"`
}

// AgentMessageRequest 坐席在后台回复访客
type AgentMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type AcceptAgentRequest struct {
	AgentName string `json:"agentName"`
}

type RenameEndUserRequest struct {
	Name string `json:"name" binding:"required"`
}

type WidgetRequestAgentRequest struct {
	SenderId string `json:"senderId" binding:"required"`
	Channel  string `json:"channel"`
}
