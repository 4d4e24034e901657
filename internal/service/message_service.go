package service

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"blog-autowriter-be/internal/dto"
	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/pkg/apperror"
	"blog-autowriter-be/internal/pkg/logger"
	"blog-autowriter-be/internal/repository/specification"
	"blog-autowriter-be/internal/repository/unitofwork"
	"blog-autowriter-be/internal/session"
	"blog-autowriter-be/pkg/changefeed"
	"blog-autowriter-be/pkg/events"
	"blog-autowriter-be/pkg/sanitize"

	"github.com/google/uuid"
)

type IMessageService interface {
	Send(ctx context.Context, sess *session.Session, req dto.SendMessageRequest) (*dto.MessageResponse, error)
	ListMine(ctx context.Context, sess *session.Session) ([]*dto.MessageResponse, error)
	MarkRead(ctx context.Context, sess *session.Session, id uuid.UUID) error
	UnreadCount(ctx context.Context, userId string) (int64, error)
	SubscribeUnread(ctx context.Context, userId string, listener func(*dto.UnreadCountResponse)) (func(), error)

	ListAll(ctx context.Context, status string, page, limit int) ([]*dto.MessageResponse, error)
	Reply(ctx context.Context, id uuid.UUID, reply string) (*dto.MessageResponse, error)
}

type messageService struct {
	uowFactory unitofwork.RepositoryFactory
	store      IProfileStore
	feed       *changefeed.Feed
	publisher  events.Publisher
	sanitizer  sanitize.Sanitizer
	logger     logger.ILogger
	unread     *unreadSequencer
}

func NewMessageService(
	uowFactory unitofwork.RepositoryFactory,
	store IProfileStore,
	feed *changefeed.Feed,
	publisher events.Publisher,
	sanitizer sanitize.Sanitizer,
	logger logger.ILogger,
) IMessageService {
	return &messageService{
		uowFactory: uowFactory,
		store:      store,
		feed:       feed,
		publisher:  publisher,
		sanitizer:  sanitizer,
		logger:     logger,
		unread:     &unreadSequencer{},
	}
}

func MessagesTopic(userId string) string {
	return "messages." + userId
}

func (s *messageService) Send(ctx context.Context, sess *session.Session, req dto.SendMessageRequest) (*dto.MessageResponse, error) {
	profile, err := s.store.Get(ctx, sess.IdentityKey)
	if err != nil {
		return nil, err
	}

	subject := s.sanitizer.Text(req.Subject)
	content := s.sanitizer.Text(req.Content)
	if subject == "" || content == "" {
		return nil, apperror.Validation("제목과 내용을 입력해주세요.")
	}

	msg := &entity.SupportMessage{
		Id:        uuid.New(),
		ProfileId: profile.Id,
		UserEmail: profile.Email,
		Subject:   subject,
		Content:   content,
		Status:    entity.MessageStatusPending,
		UserRead:  true,
		CreatedAt: time.Now(),
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SupportMessageRepository().Create(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.Info("MESSAGE", "Support message received", map[string]interface{}{
		"message_id": msg.Id.String(),
		"user_id":    profile.Id,
	})
	return toMessageResponse(msg), nil
}

func (s *messageService) ListMine(ctx context.Context, sess *session.Session) ([]*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	msgs, err := uow.SupportMessageRepository().FindAll(ctx,
		specification.OwnedBy{ProfileID: sess.IdentityKey},
		specification.NewestFirst(),
	)
	if err != nil {
		return nil, err
	}
	return toMessageResponses(msgs), nil
}

func (s *messageService) MarkRead(ctx context.Context, sess *session.Session, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.SupportMessageRepository()
	msg, err := repo.FindOne(ctx, specification.ByID{ID: id}, specification.OwnedBy{ProfileID: sess.IdentityKey})
	if err != nil {
		return err
	}
	if msg == nil {
		return apperror.NotFound("message")
	}
	if msg.UserRead {
		return nil
	}

	msg.UserRead = true
	if err := repo.Update(ctx, msg); err != nil {
		return err
	}
	s.publishUnread(ctx, msg.ProfileId)
	return nil
}

func (s *messageService) UnreadCount(ctx context.Context, userId string) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.SupportMessageRepository().Count(ctx,
		specification.OwnedBy{ProfileID: userId},
		specification.UnreadReplies{},
	)
}

func (s *messageService) SubscribeUnread(ctx context.Context, userId string, listener func(*dto.UnreadCountResponse)) (func(), error) {
	return s.feed.Subscribe(ctx, MessagesTopic(userId), func(c changefeed.Change) {
		var resp dto.UnreadCountResponse
		if err := json.Unmarshal(c.Data, &resp); err != nil {
			return
		}
		listener(&resp)
	})
}

// unreadSequencer orders unread-count publications. The count is read and
// stamped while the owner's lock is held, so a higher revision never carries
// an older count.
type unreadSequencer struct {
	shards [32]sync.Mutex
	last   atomic.Int64
}

func (q *unreadSequencer) lock(userId string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userId))
	mu := &q.shards[h.Sum32()%uint32(len(q.shards))]
	mu.Lock()
	return mu.Unlock
}

// next returns a revision above every earlier one. It follows wall time so
// revisions keep increasing across restarts.
func (q *unreadSequencer) next() int64 {
	for {
		prev := q.last.Load()
		rev := time.Now().UnixNano()
		if rev <= prev {
			rev = prev + 1
		}
		if q.last.CompareAndSwap(prev, rev) {
			return rev
		}
	}
}

// publishUnread pushes the owner's current unread count.
func (s *messageService) publishUnread(ctx context.Context, userId string) {
	unlock := s.unread.lock(userId)
	defer unlock()

	count, err := s.UnreadCount(ctx, userId)
	if err != nil {
		s.logger.Warn("MESSAGE", "Failed to count unread messages", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.feed.Publish(ctx, MessagesTopic(userId), s.unread.next(), dto.UnreadCountResponse{Unread: count}); err != nil {
		s.logger.Warn("MESSAGE", "Failed to publish unread count", map[string]interface{}{"error": err.Error()})
	}
}

func (s *messageService) ListAll(ctx context.Context, status string, page, limit int) ([]*dto.MessageResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	specs := []specification.Specification{
		specification.NewestFirst(),
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	}
	if status != "" {
		specs = append(specs, specification.ByMessageStatus{Status: entity.MessageStatus(status)})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	msgs, err := uow.SupportMessageRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	return toMessageResponses(msgs), nil
}

func (s *messageService) Reply(ctx context.Context, id uuid.UUID, reply string) (*dto.MessageResponse, error) {
	reply = s.sanitizer.Text(reply)
	if reply == "" {
		return nil, apperror.Validation("답변 내용을 입력해주세요.")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.SupportMessageRepository()
	msg, err := repo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, apperror.NotFound("message")
	}

	now := time.Now()
	msg.ReplyContent = &reply
	msg.Status = entity.MessageStatusReplied
	msg.UserRead = false
	msg.RepliedAt = &now
	if err := repo.Update(ctx, msg); err != nil {
		return nil, err
	}

	s.publishUnread(ctx, msg.ProfileId)
	if err := s.publisher.Publish(ctx, events.New(events.TypeMessageReplied, map[string]interface{}{
		"message_id": msg.Id.String(),
		"user_id":    msg.ProfileId,
		"email":      msg.UserEmail,
		"subject":    msg.Subject,
		"reply":      reply,
	})); err != nil {
		s.logger.Warn("MESSAGE", "Failed to publish MESSAGE_REPLIED", map[string]interface{}{"error": err.Error()})
	}

	s.logger.Info("MESSAGE", "Message replied", map[string]interface{}{
		"message_id": msg.Id.String(),
		"user_id":    msg.ProfileId,
	})
	return toMessageResponse(msg), nil
}

func toMessageResponse(m *entity.SupportMessage) *dto.MessageResponse {
	return &dto.MessageResponse{
		Id:           m.Id,
		ProfileId:    m.ProfileId,
		UserEmail:    m.UserEmail,
		Subject:      m.Subject,
		Content:      m.Content,
		ReplyContent: m.ReplyContent,
		Status:       string(m.Status),
		UserRead:     m.UserRead,
		CreatedAt:    m.CreatedAt,
		RepliedAt:    m.RepliedAt,
	}
}

func toMessageResponses(msgs []*entity.SupportMessage) []*dto.MessageResponse {
	res := make([]*dto.MessageResponse, len(msgs))
	for i, m := range msgs {
		res[i] = toMessageResponse(m)
	}
	return res
}
