package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversToSubscribersOfType(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var got []string
	record := func(name string) Handler {
		return func(ctx context.Context, event Event) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, name+":"+event.EventType())
			return nil
		}
	}
	bus.Subscribe(TypeUserRegistered, record("mail"))
	bus.Subscribe(TypeUserRegistered, record("audit"))
	bus.Subscribe(TypeMessageReplied, record("reply"))

	assert.NoError(t, bus.Publish(context.Background(), New(TypeUserRegistered, map[string]interface{}{"email": "a@example.com"})))
	bus.Wait()

	assert.ElementsMatch(t, []string{"mail:USER_REGISTERED", "audit:USER_REGISTERED"}, got)
}

func TestBus_HandlerOutlivesCanceledPublisher(t *testing.T) {
	bus := NewBus()
	ctx, cancel := context.WithCancel(context.Background())

	var handlerErr error
	bus.Subscribe(TypeCreditsGranted, func(ctx context.Context, event Event) error {
		handlerErr = ctx.Err()
		return errors.New("smtp down")
	})

	cancel()
	assert.NoError(t, bus.Publish(ctx, New(TypeCreditsGranted, nil)))
	bus.Wait()
	assert.NoError(t, handlerErr)
}

func TestBaseEvent_Accessors(t *testing.T) {
	e := New(TypeCreditsGranted, map[string]interface{}{
		"identity_key": "naver:1",
		"amount":       float64(5),
	})

	assert.Equal(t, "naver:1", e.String("identity_key"))
	assert.Equal(t, 5, e.Int("amount"))
	assert.Equal(t, "", e.String("missing"))
	assert.Equal(t, 0, e.Int("identity_key"))
}
