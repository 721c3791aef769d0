package service

import (
	"context"
	"strings"
	"time"

	"ChatDesk/internal/modules/tenant/application/dto/request"
	"ChatDesk/internal/modules/tenant/application/dto/respond"
	"ChatDesk/internal/modules/tenant/domain/entity"
	"ChatDesk/internal/modules/tenant/domain/repository"
	"ChatDesk/pkg/util"
	"ChatDesk/pkg/util/myjwt"
	"ChatDesk/pkg/xerr"
	"ChatDesk/pkg/zlog"

	"go.uber.org/zap"
)

// TenantResolver 先按 API Key 查，再按租户 ID 查
type TenantResolver interface {
	Resolve(ctx context.Context, keyOrID string) (*entity.Tenant, error)
}

type TenantService interface {
	TenantResolver
	Create(ctx context.Context, req request.CreateTenantRequest) (*respond.CreateTenantRespond, error)
	GetSettings(ctx context.Context, tenantID string) (*respond.TenantSettingsRespond, error)
	UpdateSettings(ctx context.Context, tenantID string, req request.UpdateSettingsRequest) (*respond.TenantSettingsRespond, error)
	GetWidgetConfig(ctx context.Context, keyOrID string) (*respond.WidgetPublicConfig, error)
}

type tenantServiceImpl struct {
	repo   repository.TenantRepository
	signer *myjwt.Signer
}

// NewTenantService signer 为 nil 时创建租户不签发令牌
func NewTenantService(repo repository.TenantRepository, signer *myjwt.Signer) TenantService {
	return &tenantServiceImpl{repo: repo, signer: signer}
}

func (s *tenantServiceImpl) Resolve(ctx context.Context, keyOrID string) (*entity.Tenant, error) {
	keyOrID = strings.TrimSpace(keyOrID)
	if keyOrID == "" {
		return nil, xerr.ErrTenantNotFound
	}
	t, err := s.repo.GetByAPIKey(ctx, keyOrID)
	if err != nil {
		zlog.Error("resolve tenant by api key failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if t != nil {
		return t, nil
	}
	t, err = s.repo.GetByID(ctx, keyOrID)
	if err != nil {
		zlog.Error("resolve tenant by id failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if t == nil {
		return nil, xerr.ErrTenantNotFound
	}
	return t, nil
}

func (s *tenantServiceImpl) Create(ctx context.Context, req request.CreateTenantRequest) (*respond.CreateTenantRespond, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, xerr.New(xerr.BadRequest, "name is required")
	}
	now := time.Now()
	t := &entity.Tenant{
		Id:           util.GenerateID("T"),
		Name:         name,
		ApiKey:       util.GenerateAPIKey(),
		SystemPrompt: strings.TrimSpace(req.SystemPrompt),
		ChatConfig: entity.ChatConfig{
			MemoryType:  entity.MemoryTypeCount,
			MemoryValue: 10,
			Temperature: 0.7,
		},
		WidgetConfig: entity.WidgetConfig{Title: name, Position: "bottom-right"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		zlog.Error("create tenant failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}

	out := &respond.CreateTenantRespond{TenantId: t.Id, Name: t.Name, ApiKey: t.ApiKey}
	if s.signer != nil {
		token, err := s.signer.GenerateToken(t.Id, "")
		if err != nil {
			zlog.Warn("issue tenant token failed", zap.String("tenant_id", t.Id), zap.Error(err))
		} else {
			out.Token = token
		}
	}
	zlog.Info("tenant created", zap.String("tenant_id", t.Id))
	return out, nil
}

func (s *tenantServiceImpl) GetSettings(ctx context.Context, tenantID string) (*respond.TenantSettingsRespond, error) {
	t, err := s.byID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return toSettings(t), nil
}

func (s *tenantServiceImpl) UpdateSettings(ctx context.Context, tenantID string, req request.UpdateSettingsRequest) (*respond.TenantSettingsRespond, error) {
	t, err := s.byID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if n := strings.TrimSpace(*req.Name); n != "" {
			t.Name = n
		}
	}
	if req.SystemPrompt != nil {
		t.SystemPrompt = strings.TrimSpace(*req.SystemPrompt)
	}
	if c := req.ChatConfig; c != nil {
		if c.MemoryType != "" && c.MemoryType != entity.MemoryTypeCount && c.MemoryType != entity.MemoryTypeTime {
			return nil, xerr.New(xerr.BadRequest, "memoryType must be count or time")
		}
		if c.Temperature < 0 || c.Temperature > 2 {
			return nil, xerr.New(xerr.BadRequest, "temperature must be within [0, 2]")
		}
		t.ChatConfig = entity.ChatConfig{
			FallbackMessage: c.FallbackMessage,
			MemoryType:      c.MemoryType,
			MemoryValue:     c.MemoryValue,
			Temperature:     c.Temperature,
		}
	}
	if w := req.WidgetConfig; w != nil {
		t.WidgetConfig = entity.WidgetConfig{
			Title:          w.Title,
			PrimaryColor:   w.PrimaryColor,
			WelcomeMessage: w.WelcomeMessage,
			Position:       w.Position,
			LeadCapture:    w.LeadCapture,
			LeadFields:     w.LeadFields,
			AllowedOrigins: w.AllowedOrigins,
		}
	}
	t.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, t); err != nil {
		zlog.Error("update tenant settings failed", zap.String("tenant_id", t.Id), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return toSettings(t), nil
}

func (s *tenantServiceImpl) GetWidgetConfig(ctx context.Context, keyOrID string) (*respond.WidgetPublicConfig, error) {
	t, err := s.Resolve(ctx, keyOrID)
	if err != nil {
		return nil, err
	}
	w := t.WidgetConfig
	return &respond.WidgetPublicConfig{
		Title:          w.Title,
		PrimaryColor:   w.PrimaryColor,
		WelcomeMessage: w.WelcomeMessage,
		Position:       w.Position,
		LeadCapture:    w.LeadCapture,
		LeadFields:     w.LeadFields,
	}, nil
}

func (s *tenantServiceImpl) byID(ctx context.Context, tenantID string) (*entity.Tenant, error) {
	t, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		zlog.Error("get tenant failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if t == nil {
		return nil, xerr.ErrTenantNotFound
	}
	return t, nil
}

func toSettings(t *entity.Tenant) *respond.TenantSettingsRespond {
	return &respond.TenantSettingsRespond{
		TenantId:     t.Id,
		Name:         t.Name,
		SystemPrompt: t.SystemPrompt,
		ChatConfig: respond.ChatConfigItem{
			FallbackMessage: t.ChatConfig.FallbackMessage,
			MemoryType:      t.ChatConfig.MemoryType,
			MemoryValue:     t.ChatConfig.MemoryValue,
			Temperature:     t.ChatConfig.Temperature,
		},
		WidgetConfig: respond.WidgetConfigItem{
			Title:          t.WidgetConfig.Title,
			PrimaryColor:   t.WidgetConfig.PrimaryColor,
			WelcomeMessage: t.WidgetConfig.WelcomeMessage,
			Position:       t.WidgetConfig.Position,
			LeadCapture:    t.WidgetConfig.LeadCapture,
			LeadFields:     t.WidgetConfig.LeadFields,
			AllowedOrigins: t.WidgetConfig.AllowedOrigins,
		},
		UpdatedAt: t.UpdatedAt,
	}
}
