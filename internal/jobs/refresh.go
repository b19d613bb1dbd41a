package jobs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/JamesLuiz/House-me/internal/storage"
)

// RefreshJobName identifies the profile image refresh in logs and status output.
const RefreshJobName = "refresh_images"

// ImageResolver looks up a user's current profile image URL. An empty URL
// means the user has no photo.
type ImageResolver interface {
	ResolveUserImage(ctx context.Context, userID int64) (string, error)
}

// Summary describes a finished refresh run.
type Summary struct {
	RunID      string
	Processed  int
	Updated    int
	Failed     int
	Terminated bool
	Expired    bool
	Duration   time.Duration
	Err        error
}

// Refresher walks every stored user and updates the stored profile image
// when it has changed.
type Refresher struct {
	users    storage.UserStore
	resolver ImageResolver
	guard    *Guard
	delay    time.Duration

	// OnDone is called with the summary of every finished run.
	OnDone func(Summary)
}

func NewRefresher(users storage.UserStore, resolver ImageResolver, guard *Guard, delay time.Duration) *Refresher {
	return &Refresher{
		users:    users,
		resolver: resolver,
		guard:    guard,
		delay:    delay,
	}
}

// Start launches a run in the background. It returns ErrAlreadyRunning if
// one is active.
func (r *Refresher) Start(ctx context.Context) (*Run, error) {
	return r.guard.TryStart(ctx, RefreshJobName, func(ctx context.Context, run *Run) {
		summary := r.run(ctx, run)
		if r.OnDone != nil {
			r.OnDone(summary)
		}
	})
}

// Terminate cancels the active run. The user being updated is finished first.
func (r *Refresher) Terminate() (*Run, error) {
	return r.guard.Cancel()
}

// Current returns the active run, or nil.
func (r *Refresher) Current() *Run {
	return r.guard.Current()
}

var errStopped = errors.New("refresh stopped")

func (r *Refresher) run(ctx context.Context, run *Run) Summary {
	start := time.Now()
	summary := Summary{RunID: run.ID}

	// The cursor outlives cancellation; the stop check below ends the walk
	// between users so an in-flight update is never cut short.
	iterCtx := context.WithoutCancel(ctx)

	err := r.users.EachUser(iterCtx, func(user *storage.User) error {
		if ctx.Err() != nil {
			return errStopped
		}

		if summary.Processed > 0 && r.delay > 0 {
			select {
			case <-ctx.Done():
				return errStopped
			case <-time.After(r.delay):
			}
		}

		updated, err := r.refreshUser(iterCtx, user)
		summary.Processed++
		run.addProcessed(err != nil)
		if err != nil {
			summary.Failed++
			log.Warn().Err(err).Str("userId", user.ID).Str("runId", run.ID).Msg("failed to refresh user image")
			return nil
		}
		if updated {
			summary.Updated++
		}
		return nil
	})

	summary.Duration = time.Since(start)
	switch {
	case errors.Is(err, errStopped):
		summary.Terminated = true
		summary.Expired = errors.Is(ctx.Err(), context.DeadlineExceeded)
	case err != nil:
		summary.Err = err
	}

	log.Info().
		Str("runId", run.ID).
		Int("processed", summary.Processed).
		Int("updated", summary.Updated).
		Int("failed", summary.Failed).
		Bool("terminated", summary.Terminated).
		Bool("expired", summary.Expired).
		Dur("duration", summary.Duration).
		Err(summary.Err).
		Msg("image refresh finished")

	return summary
}

func (r *Refresher) refreshUser(ctx context.Context, user *storage.User) (bool, error) {
	userID, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return false, fmt.Errorf("invalid user id %q: %w", user.ID, err)
	}

	imageURL, err := r.resolver.ResolveUserImage(ctx, userID)
	if err != nil {
		return false, err
	}
	if imageURL == "" || imageURL == user.UserImage {
		return false, nil
	}

	if err := r.users.SetUserImage(ctx, user.ID, imageURL); err != nil {
		return false, err
	}
	return true, nil
}
