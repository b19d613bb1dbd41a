package main

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"
)

func TestPollUpdates_ClosedChannelStopsGroup(t *testing.T) {
	updates := make(chan tgbotapi.Update, 2)
	updates <- tgbotapi.Update{UpdateID: 1}
	updates <- tgbotapi.Update{UpdateID: 2}
	close(updates)

	var handled []int
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		return pollUpdates(ctx, updates, func(_ context.Context, u tgbotapi.Update) {
			handled = append(handled, u.UpdateID)
		})
	})
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	assert.ErrorIs(t, g.Wait(), errUpdatesClosed)
	assert.Equal(t, []int{1, 2}, handled)
}

func TestPollUpdates_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pollUpdates(ctx, make(chan tgbotapi.Update), func(context.Context, tgbotapi.Update) {
		t.Fatal("unexpected update")
	})
	assert.ErrorIs(t, err, context.Canceled)
}
