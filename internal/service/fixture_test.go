package service

import (
	"context"
	"sync"
	"testing"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/pkg/logger"
	"blog-autowriter-be/internal/repository/memory"
	"blog-autowriter-be/internal/repository/unitofwork"
	"blog-autowriter-be/pkg/changefeed"
	"blog-autowriter-be/pkg/events"

	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func (p *recordingPublisher) last(eventType string) events.BaseEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].EventType() == eventType {
			e := p.events[i]
			return events.BaseEvent{Type: e.EventType(), Data: e.Payload(), OccurredAt: e.Timestamp()}
		}
	}
	return events.BaseEvent{}
}

type fixture struct {
	factory   unitofwork.RepositoryFactory
	feed      *changefeed.Feed
	log       logger.ILogger
	publisher *recordingPublisher
	store     IProfileStore
	ledger    ILedgerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		factory:   memory.NewRepositoryFactory(memory.NewStore()),
		feed:      changefeed.New(nil, nil),
		log:       logger.NewNopLogger(),
		publisher: &recordingPublisher{},
	}
	t.Cleanup(func() { _ = f.feed.Close() })
	f.store = NewProfileStore(f.factory, f.feed, f.log)
	f.ledger = NewLedgerService(f.store, f.factory, f.publisher, f.log)
	return f
}

func (f *fixture) seed(t *testing.T, id string, balance int, unlimited bool) *entity.Profile {
	t.Helper()
	p := &entity.Profile{
		Id:            id,
		Email:         "user@example.com",
		DisplayName:   "테스터",
		CreditBalance: balance,
		Unlimited:     unlimited,
	}
	require.NoError(t, f.store.Create(context.Background(), p))
	return p
}

func (f *fixture) balance(t *testing.T, id string) int {
	t.Helper()
	p, err := f.store.Get(context.Background(), id)
	require.NoError(t, err)
	return p.CreditBalance
}
