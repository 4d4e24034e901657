// Package changefeed fans document changes out to in-process listeners over
// a watermill gochannel, one topic per document. When a redis client is
// supplied, changes are relayed to other instances as well.
package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const (
	relayChannel     = "changefeed"
	revisionMetadata = "revision"
)

// Change is one write to a document. Revision 0 marks an unversioned
// notification that is always delivered.
type Change struct {
	Topic    string          `json:"topic"`
	Revision int64           `json:"revision"`
	Data     json.RawMessage `json:"data"`
}

type Listener func(Change)

type relayEnvelope struct {
	Origin string `json:"origin"`
	Change
}

type Feed struct {
	pubsub   *gochannel.GoChannel
	rdb      *redis.Client
	instance string
	logger   watermill.LoggerAdapter
}

func New(rdb *redis.Client, logger watermill.LoggerAdapter) *Feed {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Feed{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            64,
			BlockPublishUntilSubscriberAck: true,
		}, logger),
		rdb:      rdb,
		instance: watermill.NewShortUUID(),
		logger:   logger,
	}
}

// Publish announces a new revision of the document behind topic.
func (f *Feed) Publish(ctx context.Context, topic string, revision int64, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal change for %s: %w", topic, err)
	}
	change := Change{Topic: topic, Revision: revision, Data: payload}

	if err := f.publishLocal(change); err != nil {
		return err
	}

	if f.rdb != nil {
		env, _ := json.Marshal(relayEnvelope{Origin: f.instance, Change: change})
		if err := f.rdb.Publish(ctx, relayChannel, env).Err(); err != nil {
			f.logger.Error("changefeed relay publish failed", err, watermill.LogFields{"topic": topic})
		}
	}
	return nil
}

func (f *Feed) publishLocal(change Change) error {
	msg := message.NewMessage(watermill.NewUUID(), message.Payload(change.Data))
	msg.Metadata.Set(revisionMetadata, strconv.FormatInt(change.Revision, 10))
	if err := f.pubsub.Publish(change.Topic, msg); err != nil {
		return fmt.Errorf("publish change for %s: %w", change.Topic, err)
	}
	return nil
}

// Subscribe attaches listener to topic until the returned function is called
// or ctx ends. A listener never sees a revision at or below one it already
// received.
func (f *Feed) Subscribe(ctx context.Context, topic string, listener Listener) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	messages, err := f.pubsub.Subscribe(subCtx, topic)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		var last int64
		for msg := range messages {
			msg.Ack()
			revision, _ := strconv.ParseInt(msg.Metadata.Get(revisionMetadata), 10, 64)
			if revision > 0 {
				if revision <= last {
					continue
				}
				last = revision
			}
			listener(Change{Topic: topic, Revision: revision, Data: json.RawMessage(msg.Payload)})
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}, nil
}

// Run relays changes published by other instances until ctx ends. It is a
// no-op without redis.
func (f *Feed) Run(ctx context.Context) {
	if f.rdb == nil {
		return
	}

	sub := f.rdb.Subscribe(ctx, relayChannel)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var env relayEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				f.logger.Error("changefeed relay decode failed", err, nil)
				continue
			}
			if env.Origin == f.instance {
				continue
			}
			if err := f.publishLocal(env.Change); err != nil {
				f.logger.Error("changefeed relay republish failed", err, watermill.LogFields{"topic": env.Topic})
			}
		}
	}
}

func (f *Feed) Close() error {
	return f.pubsub.Close()
}
