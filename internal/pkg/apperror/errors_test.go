package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), KindInternal},
		{"typed", NotRegistered(), KindNotRegistered},
		{"wrapped typed", fmt.Errorf("login: %w", AlreadyExists()), KindAlreadyExists},
		{"generation failure wins over cause", &GenerationFailure{Cause: SchemaViolation("bad")}, KindGenerationFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestGenerationFailureCauseKind(t *testing.T) {
	schema := &GenerationFailure{Cause: SchemaViolation("missing tags"), Refunded: true}
	network := &GenerationFailure{Cause: errors.New("connection reset"), Refunded: true}

	assert.Equal(t, KindSchemaViolation, schema.CauseKind())
	assert.Equal(t, KindGenerationFailure, network.CauseKind())
	assert.Contains(t, schema.Error(), "refunded")
	assert.NotEqual(t, schema.UserMessage(), (&GenerationFailure{Cause: errors.New("x")}).UserMessage())
}

func TestWithActionCopies(t *testing.T) {
	base := New(KindValidation, "bad")
	withAction := base.WithAction("fix it")

	assert.Empty(t, base.Action)
	assert.Equal(t, "fix it", withAction.Action)
}
