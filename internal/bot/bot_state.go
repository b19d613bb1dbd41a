package bot

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type BotState struct {
	bot      *Bot
	mu       sync.Mutex
	sessions map[int64]*UserSession
}

func (bs *BotState) newUserSession(userId int64) *UserSession {
	ctx, cancel := context.WithCancel(context.Background())
	session := &UserSession{
		userId: userId,
		sender: bs.bot.tg,
		inbox:  make(chan SessionMessage, 10), // Buffered to avoid blocking
		ctx:    ctx,
		cancel: cancel,
	}
	log.Debug().Int64("userId", userId).Msg("new user session created")
	return session
}

// acquireUserSession returns the user's session with one more message
// accounted as pending. The caller must queue exactly one message on it.
func (bs *BotState) acquireUserSession(userId int64) *UserSession {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	session, ok := bs.sessions[userId]
	if !ok {
		session = bs.newUserSession(userId)
		session.SetHandler(bs.bot)
		session.StartWorker()
		bs.sessions[userId] = session
		activeSessions.Set(float64(len(bs.sessions)))
	}
	session.touch(bs.bot.now())
	return session
}

// Len is the number of live session workers.
func (bs *BotState) Len() int {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return len(bs.sessions)
}

func (b *Bot) NewBotState() *BotState {
	return &BotState{
		bot:      b,
		sessions: make(map[int64]*UserSession),
	}
}

// reapIdle stops sessions with no queued work that have been idle longer than maxIdle.
func (bs *BotState) reapIdle(maxIdle time.Duration) int {
	cutoff := bs.bot.now().Add(-maxIdle)

	bs.mu.Lock()
	var idle []*UserSession
	for id, session := range bs.sessions {
		if session.pending.Load() > 0 || session.idleSince().After(cutoff) {
			continue
		}
		idle = append(idle, session)
		delete(bs.sessions, id)
	}
	activeSessions.Set(float64(len(bs.sessions)))
	bs.mu.Unlock()

	for _, session := range idle {
		session.Stop()
	}
	if len(idle) > 0 {
		log.Debug().Int("count", len(idle)).Msg("reaped idle session workers")
	}
	return len(idle)
}

// RunReaper periodically stops idle session workers until ctx is cancelled.
func (bs *BotState) RunReaper(ctx context.Context, maxIdle time.Duration) {
	if maxIdle <= 0 {
		return
	}
	interval := maxIdle / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bs.reapIdle(maxIdle)
		}
	}
}

// Shutdown stops all session workers gracefully.
func (bs *BotState) Shutdown() {
	bs.mu.Lock()
	sessions := make([]*UserSession, 0, len(bs.sessions))
	for _, session := range bs.sessions {
		sessions = append(sessions, session)
	}
	bs.sessions = make(map[int64]*UserSession)
	bs.mu.Unlock()

	// Stop all workers (outside the lock to avoid blocking)
	for _, session := range sessions {
		session.Stop()
	}
	log.Info().Int("count", len(sessions)).Msg("stopped all session workers")
}
