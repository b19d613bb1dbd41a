package bot

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const onePhoto = `{"total_count":1,"photos":[[{"file_id":"small","file_unique_id":"s","width":160,"height":160},{"file_id":"big","file_unique_id":"b","width":640,"height":640}]]}`

func expectPhotos(tg *botApiMock, result string) {
	tg.On("Request", mock.AnythingOfType("tgbotapi.UserProfilePhotosConfig")).
		Return(&tgbotapi.APIResponse{Ok: true, Result: json.RawMessage(result)}, nil).Once()
}

func TestResolveUserImage_UsesLargestSize(t *testing.T) {
	env := setup(t)
	ts := newFileServer(t)
	expectPhotos(env.tg, onePhoto)
	env.tg.On("GetFileDirectURL", "big").Return(ts.URL+"/big.jpg", nil).Once()

	url, err := env.bot.ResolveUserImage(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, ts.URL+"/big.jpg", url)
	env.tg.AssertExpectations(t)
}

func TestResolveUserImage_NoPhotos(t *testing.T) {
	env := setup(t)
	expectPhotos(env.tg, `{"total_count":0,"photos":[]}`)

	url, err := env.bot.ResolveUserImage(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, url)
	env.tg.AssertNotCalled(t, "GetFileDirectURL", mock.Anything)
}

func TestResolveUserImage_CheckFailureHidesURL(t *testing.T) {
	env := setup(t)
	ts := newFileServer(t)
	expectPhotos(env.tg, onePhoto)
	env.tg.On("GetFileDirectURL", "big").Return(ts.URL+"/file/bot123:SECRET/missing.jpg", nil).Once()

	url, err := env.bot.ResolveUserImage(context.Background(), 42)
	require.Error(t, err)
	assert.Empty(t, url)
	assert.Contains(t, err.Error(), "status 404")
	assert.NotContains(t, err.Error(), "SECRET")
}

func TestResolveUserImage_TransportErrorHidesURL(t *testing.T) {
	env := setup(t)
	expectPhotos(env.tg, onePhoto)
	env.tg.On("GetFileDirectURL", "big").Return("http://127.0.0.1:1/file/bot123:SECRET/big.jpg", nil).Once()

	_, err := env.bot.ResolveUserImage(context.Background(), 42)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET")
}

func TestResolveUserImage_PhotosRequestFails(t *testing.T) {
	env := setup(t)
	env.tg.On("Request", mock.AnythingOfType("tgbotapi.UserProfilePhotosConfig")).
		Return(&tgbotapi.APIResponse{}, errors.New("Forbidden: bot was blocked by the user")).Once()

	_, err := env.bot.ResolveUserImage(context.Background(), 42)
	assert.ErrorContains(t, err, "failed to get profile photos")
}
