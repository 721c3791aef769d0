package service

import (
	"context"
	"database/sql"
	"strings"
	"time"
	"unicode/utf8"

	"ChatDesk/internal/modules/ai/infrastructure/pipeline"
	chatRespond "ChatDesk/internal/modules/chat/application/dto/respond"
	chatEntity "ChatDesk/internal/modules/chat/domain/entity"
	chatRepository "ChatDesk/internal/modules/chat/domain/repository"
	"ChatDesk/internal/modules/chat/domain/sentiment"
	tenantService "ChatDesk/internal/modules/tenant/application/service"
	tenantEntity "ChatDesk/internal/modules/tenant/domain/entity"
	"ChatDesk/pkg/metrics"
	"ChatDesk/pkg/util"
	"ChatDesk/pkg/xerr"
	"ChatDesk/pkg/zlog"

	"go.uber.org/zap"
)

const (
	AgentPendingReply = "Your message has been received. An agent will respond shortly."
	FallbackReply     = "I'm sorry, I'm having trouble answering right now. Please try again in a moment."
	GuestName         = "Guest Visitor"

	DefaultHistoryWindow = 10
	previewLen           = 120
)

const (
	OutcomeAI      = "ai"
	OutcomeQueued  = "queued"
	OutcomeSilent  = "silent"
	OutcomeBlocked = "blocked"
)

// InboundMessage 渠道适配层归一化后的访客消息
type InboundMessage struct {
	TenantKey   string
	Text        string
	SenderId    string
	Channel     string
	DisplayName string
	AvatarUrl   string
}

type Replier interface {
	Reply(ctx context.Context, req *pipeline.ReplyRequest) *pipeline.ReplyResult
}

type RouterService interface {
	// ProcessMessage 只有租户无法解析或存储出错时返回 error，AI 失败会降级为固定致歉文案
	ProcessMessage(ctx context.Context, in InboundMessage) (*chatRespond.ProcessMessageRespond, error)
}

type RouterDeps struct {
	Tenants       tenantService.TenantResolver
	EndUsers      chatRepository.EndUserRepository
	Sessions      chatRepository.SessionRepository
	Messages      chatRepository.MessageRepository
	Replier       Replier
	Selector      SessionSelector
	Notifier      Notifier
	HistoryWindow int
	TopK          int
}

type routerServiceImpl struct {
	RouterDeps
}

func NewRouterService(deps RouterDeps) RouterService {
	if deps.Selector == nil {
		deps.Selector = LatestSessionSelector{Sessions: deps.Sessions}
	}
	if deps.Notifier == nil {
		deps.Notifier = NoopNotifier
	}
	if deps.HistoryWindow <= 0 {
		deps.HistoryWindow = DefaultHistoryWindow
	}
	return &routerServiceImpl{RouterDeps: deps}
}

// QualifyExternalID 给渠道 ID 加前缀，避免不同渠道的访客 ID 冲突
func QualifyExternalID(channel, senderID string) string {
	switch channel {
	case chatEntity.ChannelMessenger:
		if strings.HasPrefix(senderID, "messenger-") {
			return senderID
		}
		return "messenger-" + senderID
	case chatEntity.ChannelWhatsApp:
		if strings.HasPrefix(senderID, "wa_") {
			return senderID
		}
		return "wa_" + senderID
	default:
		return senderID
	}
}

// senderIdentity 空身份（或只有渠道前缀）会让所有匿名访客共用一个 EndUser
func senderIdentity(channel, senderID string) (string, error) {
	senderID = strings.TrimSpace(senderID)
	externalID := QualifyExternalID(channel, senderID)
	if senderID == "" || externalID == "messenger-" || externalID == "wa_" {
		return "", xerr.ErrEmptySender
	}
	return externalID, nil
}

func NormalizeChannel(channel string) string {
	channel = strings.ToLower(strings.TrimSpace(channel))
	if channel == "" {
		return chatEntity.ChannelWidget
	}
	return channel
}

func (s *routerServiceImpl) ProcessMessage(ctx context.Context, in InboundMessage) (*chatRespond.ProcessMessageRespond, error) {
	start := time.Now()
	channel := NormalizeChannel(in.Channel)
	externalID, err := senderIdentity(channel, in.SenderId)
	if err != nil {
		return nil, err
	}
	tenant, err := s.Tenants.Resolve(ctx, in.TenantKey)
	if err != nil {
		return nil, err
	}

	user, err := s.resolveEndUser(ctx, tenant.Id, channel, externalID, in)
	if err != nil {
		return nil, err
	}
	if user.Blocked {
		out := &chatRespond.ProcessMessageRespond{Blocked: true}
		if sess, err := s.Selector.Select(ctx, user.Id); err == nil && sess != nil {
			out.SessionId = sess.Id
		}
		s.finish(tenant.Id, out.SessionId, channel, OutcomeBlocked, start)
		return out, nil
	}

	sess, err := s.resolveSession(ctx, tenant.Id, user.Id)
	if err != nil {
		return nil, err
	}

	tag := sentiment.Analyze(in.Text)
	userMsg := newMessage(sess.Id, chatEntity.RoleUser, in.Text, "")
	userMsg.SentimentScore = sql.NullInt32{Int32: int32(tag.Score), Valid: true}
	userMsg.SentimentLabel = sql.NullString{String: tag.Label, Valid: true}
	if err := s.Messages.Create(ctx, userMsg); err != nil {
		zlog.Error("persist user message failed", zap.String("session_id", sess.Id), zap.Error(err))
		return nil, err
	}
	if err := s.Sessions.RecordInbound(ctx, sess.Id, tag.Mood, preview(in.Text), userMsg.CreatedAt); err != nil {
		zlog.Error("update session on inbound failed", zap.String("session_id", sess.Id), zap.Error(err))
		return nil, err
	}
	notifyMessage(s.Notifier, tenant.Id, userMsg)

	out := &chatRespond.ProcessMessageRespond{SessionId: sess.Id}
	var outcome string
	switch sess.Status {
	case chatEntity.SessionStatusAgentConnected:
		outcome = OutcomeSilent
	case chatEntity.SessionStatusAgentRequested:
		outcome = OutcomeQueued
		if err := s.persistReply(ctx, tenant.Id, sess.Id, AgentPendingReply); err != nil {
			return nil, err
		}
		reply := AgentPendingReply
		out.Reply = &reply
	default:
		outcome = OutcomeAI
		answer, err := s.aiReply(ctx, tenant, sess.Id, in.Text)
		if err != nil {
			return nil, err
		}
		out.Reply = &answer
	}

	s.finish(tenant.Id, sess.Id, channel, outcome, start)
	return out, nil
}

func (s *routerServiceImpl) resolveEndUser(ctx context.Context, tenantID, channel, externalID string, in InboundMessage) (*chatEntity.EndUser, error) {
	user, err := s.EndUsers.GetByExternalID(ctx, tenantID, externalID)
	if err != nil {
		zlog.Error("get end user failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = GuestName
	}
	now := time.Now()
	user = &chatEntity.EndUser{
		Id:         util.GenerateID("U"),
		TenantId:   tenantID,
		ExternalId: externalID,
		Name:       name,
		Avatar:     strings.TrimSpace(in.AvatarUrl),
		Channel:    channel,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.EndUsers.Create(ctx, user); err != nil {
		// 并发首条消息撞唯一索引时，读回另一请求创建的记录
		existing, getErr := s.EndUsers.GetByExternalID(ctx, tenantID, externalID)
		if getErr == nil && existing != nil {
			return existing, nil
		}
		zlog.Error("create end user failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *routerServiceImpl) resolveSession(ctx context.Context, tenantID, endUserID string) (*chatEntity.ChatSession, error) {
	sess, err := s.Selector.Select(ctx, endUserID)
	if err != nil {
		zlog.Error("select session failed", zap.String("end_user_id", endUserID), zap.Error(err))
		return nil, err
	}
	if sess != nil {
		return sess, nil
	}
	now := time.Now()
	sess = &chatEntity.ChatSession{
		Id:        util.GenerateID("S"),
		TenantId:  tenantID,
		EndUserId: endUserID,
		Status:    chatEntity.SessionStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Sessions.Create(ctx, sess); err != nil {
		zlog.Error("create session failed", zap.String("end_user_id", endUserID), zap.Error(err))
		return nil, err
	}
	return sess, nil
}

func (s *routerServiceImpl) aiReply(ctx context.Context, tenant *tenantEntity.Tenant, sessionID, question string) (string, error) {
	history, err := s.Messages.ListRecentForModel(ctx, sessionID, s.HistoryWindow)
	if err != nil {
		zlog.Error("load history failed", zap.String("session_id", sessionID), zap.Error(err))
		return "", err
	}
	turns := make([]pipeline.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, pipeline.Turn{Role: m.Role, Content: m.Content})
	}

	answer := FallbackReply
	if s.Replier == nil {
		metrics.AIFallbacks.WithLabelValues(pipeline.StageGenerate).Inc()
		zlog.Warn("no replier configured, using fallback", zap.String("session_id", sessionID))
	} else {
		res := s.Replier.Reply(ctx, &pipeline.ReplyRequest{
			TenantID:     tenant.Id,
			SystemPrompt: tenant.SystemPrompt,
			History:      turns,
			Question:     question,
			TopK:         s.TopK,
		})
		switch {
		case res == nil:
			metrics.AIFallbacks.WithLabelValues(pipeline.StageGenerate).Inc()
		case res.Err != nil:
			metrics.AIFallbacks.WithLabelValues(res.Stage).Inc()
			zlog.Warn("ai reply failed, using fallback",
				zap.String("tenant_id", tenant.Id),
				zap.String("session_id", sessionID),
				zap.String("stage", res.Stage),
				zap.Error(res.Err),
			)
		default:
			answer = res.Answer
			metrics.AIReplyLatency.Observe(float64(res.DurationMs) / 1000)
			zlog.Debug("ai reply generated",
				zap.String("session_id", sessionID),
				zap.Int("context_chunks", res.ContextChunks),
				zap.Int64("ms", res.DurationMs),
			)
		}
	}

	if err := s.persistReply(ctx, tenant.Id, sessionID, answer); err != nil {
		return "", err
	}
	return answer, nil
}

func (s *routerServiceImpl) persistReply(ctx context.Context, tenantID, sessionID, content string) error {
	msg := newMessage(sessionID, chatEntity.RoleAssistant, content, "")
	if err := s.Messages.Create(ctx, msg); err != nil {
		zlog.Error("persist assistant message failed", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}
	if err := s.Sessions.TouchLastMessage(ctx, sessionID, preview(content), msg.CreatedAt); err != nil {
		zlog.Warn("touch session failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	notifyMessage(s.Notifier, tenantID, msg)
	return nil
}

func (s *routerServiceImpl) finish(tenantID, sessionID, channel, outcome string, start time.Time) {
	metrics.RouterMessages.WithLabelValues(channel, outcome).Inc()
	zlog.Info("message routed",
		zap.String("tenant_id", tenantID),
		zap.String("session_id", sessionID),
		zap.String("channel", channel),
		zap.String("outcome", outcome),
		zap.Int64("ms", time.Since(start).Milliseconds()),
	)
}

func newMessage(sessionID, role, content, author string) *chatEntity.ChatMessage {
	return &chatEntity.ChatMessage{
		Id:         util.GenerateID("M"),
		SessionId:  sessionID,
		Role:       role,
		Content:    content,
		AuthorName: author,
		TokenCount: chatEntity.EstimateTokens(content),
		ByteSize:   len(content),
		CreatedAt:  time.Now(),
	}
}

func preview(content string) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= previewLen {
		return content
	}
	return string([]rune(content)[:previewLen])
}
