package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		message  string
		expected bool
	}{
		{"wrapped sentinel", fmt.Errorf("failed to get drawing: %w", entities.ErrDrawingNotFound), "That giveaway does not exist", true},
		{"gate exists", entities.ErrGateExists, "That message is already gated", true},
		{"ambiguous name", interfaces.ErrAmbiguous, "That name matches more than one object, use a mention or an id", true},
		{"user error", NewUserError("Pick a text channel", "channel is a category"), "Pick a text channel", true},
		{"system error", NewSystemError(errors.New("conn reset"), "failed to begin"), "Something went wrong. Please try again later.", false},
		{"unexpected", errors.New("boom"), "Something went wrong. Please try again later.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			message, expected := UserMessage(tt.err)
			assert.Equal(t, tt.message, message)
			assert.Equal(t, tt.expected, expected)
		})
	}
}

func TestUserMessage_UnknownRequirementNamesToken(t *testing.T) {
	t.Parallel()

	message, expected := UserMessage(fmt.Errorf("%w: %q", entities.ErrUnknownRequirement, "dungeonz"))

	assert.True(t, expected)
	assert.Contains(t, message, `"dungeonz"`)
}

func TestBotError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("timeout")
	err := NewSystemError(cause, "failed to commit")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to commit: timeout", err.Error())
}
