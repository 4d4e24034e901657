package nats

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	header := nats.Header{}
	header.Set(headerOccurredAt, at.Format(time.RFC3339Nano))

	ev, err := decodeEvent(SubjectPrefix+"MESSAGE_REPLIED", header, []byte(`{"email":"u@naver.com","credits":3}`))
	require.NoError(t, err)

	assert.Equal(t, "MESSAGE_REPLIED", ev.EventType())
	assert.True(t, at.Equal(ev.Timestamp()))
	assert.Equal(t, "u@naver.com", ev.String("email"))
	assert.Equal(t, 3, ev.Int("credits"))
}

func TestDecodeEvent_MissingHeaderAndBadPayload(t *testing.T) {
	ev, err := decodeEvent(SubjectPrefix+"USER_REGISTERED", nil, []byte(`{}`))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ev.Timestamp(), time.Second)

	_, err = decodeEvent(SubjectPrefix+"USER_REGISTERED", nil, []byte(`[1,2`))
	assert.Error(t, err)
}
