package bot

import (
	"errors"
	"net/http"
	"testing"

	"github.com/skyblockz/sbz-giveaway/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingle(t *testing.T) {
	t.Parallel()

	_, err := single(nil)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	id, err := single([]string{"42"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = single([]string{"1", "2"})
	assert.ErrorIs(t, err, interfaces.ErrAmbiguous)
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	notFound := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
	assert.ErrorIs(t, translate(notFound), interfaces.ErrNotFound)

	forbidden := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}
	assert.NotErrorIs(t, translate(forbidden), interfaces.ErrNotFound)

	plain := errors.New("websocket closed")
	assert.Same(t, plain, translate(plain))
}
