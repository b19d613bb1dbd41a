package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// DefaultPhotoCheckTimeout bounds the request that checks a profile photo URL.
const DefaultPhotoCheckTimeout = 30 * time.Second

func newPhotoClient() *resty.Client {
	return resty.New().
		SetDebug(false).
		SetTimeout(DefaultPhotoCheckTimeout)
}

// ResolveUserImage returns the direct URL of the user's current profile
// photo, or "" when the user has none. The URL is only returned once it
// has been fetched successfully.
func (b *Bot) ResolveUserImage(ctx context.Context, userID int64) (string, error) {
	config := tgbotapi.NewUserProfilePhotos(userID)
	config.Limit = 1

	resp, err := b.tg.Request(config)
	if err != nil {
		return "", fmt.Errorf("failed to get profile photos: %w", err)
	}

	var photos tgbotapi.UserProfilePhotos
	if err := json.Unmarshal(resp.Result, &photos); err != nil {
		return "", fmt.Errorf("failed to decode profile photos: %w", err)
	}
	if photos.TotalCount == 0 || len(photos.Photos) == 0 || len(photos.Photos[0]) == 0 {
		return "", nil
	}

	// Sizes are ordered smallest first
	sizes := photos.Photos[0]
	fileID := sizes[len(sizes)-1].FileID
	log.Debug().Int64("userId", userID).Str("fileID", fileID).Msg("resolving profile photo")

	fileURL, err := b.tg.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to get file URL: %w", err)
	}
	if err := b.checkURL(ctx, fileURL); err != nil {
		return "", err
	}
	return fileURL, nil
}

// checkURL checks that url answers 200. Errors never include the URL,
// since Telegram file URLs embed the bot token.
func (b *Bot) checkURL(ctx context.Context, fileURL string) error {
	res, err := b.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(fileURL)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("failed to fetch profile photo: %w", err)
	}
	defer res.RawBody().Close()

	if res.StatusCode() != http.StatusOK {
		return fmt.Errorf("failed to fetch profile photo: status %d", res.StatusCode())
	}
	return nil
}
