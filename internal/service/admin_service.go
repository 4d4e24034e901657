package service

import (
	"context"
	"time"

	"blog-autowriter-be/internal/dto"
	"blog-autowriter-be/internal/pkg/apperror"
	"blog-autowriter-be/internal/pkg/logger"
	"blog-autowriter-be/internal/repository/specification"
	"blog-autowriter-be/internal/session"

	"github.com/google/uuid"
)

type IAdminService interface {
	// Profiles
	ListProfiles(ctx context.Context, page, limit int) (*dto.AdminProfileListResponse, error)
	GrantCredits(ctx context.Context, admin *session.Session, userId string, req dto.AdminGrantCreditsRequest) (*dto.ProfileResponse, error)
	SetUnlimited(ctx context.Context, admin *session.Session, userId string, unlimited bool) (*dto.ProfileResponse, error)

	// Messages
	ListMessages(ctx context.Context, req dto.AdminMessageListRequest) ([]*dto.MessageResponse, error)
	ReplyMessage(ctx context.Context, admin *session.Session, id uuid.UUID, reply string) (*dto.MessageResponse, error)

	// Logs
	GetSystemLogs(ctx context.Context, page, limit int, level string) ([]*dto.LogListResponse, error)
	GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error)
}

type adminService struct {
	store    IProfileStore
	ledger   ILedgerService
	messages IMessageService
	logger   logger.ILogger
}

func NewAdminService(store IProfileStore, ledger ILedgerService, messages IMessageService, logger logger.ILogger) IAdminService {
	return &adminService{
		store:    store,
		ledger:   ledger,
		messages: messages,
		logger:   logger,
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func (s *adminService) ListProfiles(ctx context.Context, page, limit int) (*dto.AdminProfileListResponse, error) {
	page, limit = normalizePage(page, limit)

	profiles, err := s.store.List(ctx,
		specification.NewestFirst(),
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ProfileResponse, len(profiles))
	for i, p := range profiles {
		res[i] = ToProfileResponse(p)
	}
	return &dto.AdminProfileListResponse{Profiles: res, Total: total, Page: page, Limit: limit}, nil
}

func (s *adminService) GrantCredits(ctx context.Context, admin *session.Session, userId string, req dto.AdminGrantCreditsRequest) (*dto.ProfileResponse, error) {
	profile, err := s.ledger.Grant(ctx, userId, req.Amount, req.Note)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ADMIN", "Credits granted", map[string]interface{}{
		"admin":   admin.Email,
		"user_id": userId,
		"amount":  req.Amount,
	})
	return ToProfileResponse(profile), nil
}

func (s *adminService) SetUnlimited(ctx context.Context, admin *session.Session, userId string, unlimited bool) (*dto.ProfileResponse, error) {
	profile, err := s.ledger.SetUnlimited(ctx, userId, unlimited)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ADMIN", "Unlimited toggled", map[string]interface{}{
		"admin":     admin.Email,
		"user_id":   userId,
		"unlimited": unlimited,
	})
	return ToProfileResponse(profile), nil
}

func (s *adminService) ListMessages(ctx context.Context, req dto.AdminMessageListRequest) ([]*dto.MessageResponse, error) {
	page, limit := normalizePage(req.Page, req.Limit)
	return s.messages.ListAll(ctx, req.Status, page, limit)
}

func (s *adminService) ReplyMessage(ctx context.Context, admin *session.Session, id uuid.UUID, reply string) (*dto.MessageResponse, error) {
	msg, err := s.messages.Reply(ctx, id, reply)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ADMIN", "Message replied", map[string]interface{}{
		"admin":      admin.Email,
		"message_id": id.String(),
	})
	return msg, nil
}

func parseLogTime(ts string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05.000Z0700", time.RFC3339} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (s *adminService) GetSystemLogs(ctx context.Context, page, limit int, level string) ([]*dto.LogListResponse, error) {
	page, limit = normalizePage(page, limit)
	logs, err := s.logger.GetLogs(level, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.LogListResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, &dto.LogListResponse{
			Id:        l.Id,
			Level:     l.Level,
			Module:    l.Module,
			Message:   l.Message,
			CreatedAt: parseLogTime(l.Timestamp),
		})
	}
	return res, nil
}

func (s *adminService) GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error) {
	l, err := s.logger.GetLogById(logId)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, apperror.NotFound("log")
	}

	return &dto.LogDetailResponse{
		LogListResponse: dto.LogListResponse{
			Id:        logId,
			Level:     l.Level,
			Module:    l.Module,
			Message:   l.Message,
			CreatedAt: parseLogTime(l.Timestamp),
		},
		Details: l.Details,
	}, nil
}
