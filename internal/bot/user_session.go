package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// MessageType is the kind of work queued on a session worker.
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeCallback MessageType = "callback"
)

var (
	// ErrSessionStopped is returned for work queued on a stopped session.
	ErrSessionStopped = errors.New("user session stopped")
	// ErrHandlerPanic is returned when processing an update panicked.
	ErrHandlerPanic = errors.New("update handler panicked")
)

// SessionMessage represents a message to be processed by the session worker.
type SessionMessage struct {
	Type  MessageType
	Ctx   context.Context
	Done  chan struct{} // Closed when processing is complete (for synchronous dispatch)
	Error chan error    // Optional: receives a processing failure, buffered

	// Message data (only one is set based on Type)
	Message       *tgbotapi.Message
	CallbackQuery *tgbotapi.CallbackQuery
	Text          string
}

// escapeMarkdown escapes special characters for Telegram Markdown V1
func escapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "*", "\\*")
	text = strings.ReplaceAll(text, "_", "\\_")
	text = strings.ReplaceAll(text, "`", "\\`")
	text = strings.ReplaceAll(text, "[", "\\[")
	return text
}

var markdownEntityChars = strings.NewReplacer("*", "", "_", "", "`", "", "[", "")

// boldMarkdown wraps text in a Markdown V1 bold entity. Escapes are not
// honored inside entities, so entity characters are dropped instead.
func boldMarkdown(text string) string {
	return "*" + markdownEntityChars.Replace(text) + "*"
}

// MessageSender abstracts the ability to send Telegram messages.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// MessageHandler is the interface for processing session messages.
type MessageHandler interface {
	HandleSessionMessage(ctx context.Context, session *UserSession, msg SessionMessage)
}

// UserSession serializes the updates of one Telegram user.
//
// Threading model:
//   - Each session has a dedicated worker goroutine that processes messages sequentially
//   - Updates from different users are processed concurrently
//   - pending and lastActive are touched under BotState.mu when work is queued,
//     so an idle session is never reaped while a message is on its way in
type UserSession struct {
	userId int64
	sender MessageSender

	// Worker channel for sequential message processing
	inbox   chan SessionMessage
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	handler MessageHandler

	pending    atomic.Int64
	lastActive atomic.Int64 // unix nanos
}

func (s *UserSession) touch(now time.Time) {
	s.pending.Add(1)
	s.lastActive.Store(now.UnixNano())
}

func (s *UserSession) idleSince() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *UserSession) replyWithMessage(msg tgbotapi.MessageConfig) tgbotapi.Message {
	msg.ChatID = s.userId
	sent, err := s.sender.Send(msg)
	if err != nil {
		log.Error().Stack().
			Int64("userId", s.userId).
			Err(fmt.Errorf("failed to send reply message: %w", err)).Send()
	} else {
		log.Debug().Int64("userId", s.userId).Int("messageId", sent.MessageID).Msg("sent message")
	}

	return sent
}

func (s *UserSession) reply(text string, a ...any) tgbotapi.Message {
	return s.replyWithKeyboard(nil, text, a...)
}

// replyWithKeyboard sends a Markdown message with an optional inline keyboard.
func (s *UserSession) replyWithKeyboard(keyboard *tgbotapi.InlineKeyboardMarkup, text string, a ...any) tgbotapi.Message {
	msg := tgbotapi.MessageConfig{
		Text:      formatReplyText(text, a...),
		ParseMode: tgbotapi.ModeMarkdown,
	}
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	return s.replyWithMessage(msg)
}

// --- Worker methods ---

// StartWorker starts the session's message processing worker goroutine.
// Must be called after setting the handler.
func (s *UserSession) StartWorker() {
	s.wg.Add(1)
	go s.runWorker()
}

// SetHandler sets the message handler for this session.
func (s *UserSession) SetHandler(handler MessageHandler) {
	s.handler = handler
}

// runWorker is the main worker loop that processes messages sequentially.
func (s *UserSession) runWorker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			// Drain any remaining messages and signal completion
			for {
				select {
				case msg := <-s.inbox:
					s.abandon(msg)
				default:
					return
				}
			}
		case msg := <-s.inbox:
			s.processMessage(msg)
		}
	}
}

func (s *UserSession) abandon(msg SessionMessage) {
	s.pending.Add(-1)
	if msg.Error != nil {
		msg.Error <- ErrSessionStopped
	}
	if msg.Done != nil {
		close(msg.Done)
	}
}

// processMessage handles a single message from the inbox.
func (s *UserSession) processMessage(msg SessionMessage) {
	defer func() {
		// Recover from any panics to keep the worker running
		if r := recover(); r != nil {
			log.Error().
				Int64("userId", s.userId).
				Interface("panic", r).
				Msg("recovered from panic in session worker")
			if msg.Error != nil {
				msg.Error <- fmt.Errorf("%w: %v", ErrHandlerPanic, r)
			}
		}
		s.pending.Add(-1)
		if msg.Done != nil {
			close(msg.Done)
		}
	}()

	if s.handler == nil {
		log.Error().Int64("userId", s.userId).Msg("session handler not set")
		return
	}

	ctx := msg.Ctx
	if ctx == nil {
		ctx = s.ctx
	}
	s.handler.HandleSessionMessage(ctx, s, msg)
}

// Send queues a message for processing by the worker.
// This is non-blocking - it returns immediately after queuing.
func (s *UserSession) Send(msg SessionMessage) {
	if s.ctx.Err() != nil {
		s.abandon(msg)
		return
	}
	select {
	case s.inbox <- msg:
	case <-s.ctx.Done():
		s.abandon(msg)
	}
}

// SendSync queues a message and waits for it to be processed. It returns an
// error only if the update could not be processed to completion.
func (s *UserSession) SendSync(msg SessionMessage) error {
	msg.Done = make(chan struct{})
	msg.Error = make(chan error, 1)
	s.Send(msg)
	<-msg.Done
	select {
	case err := <-msg.Error:
		return err
	default:
		return nil
	}
}

// Stop stops the worker and waits for it to finish.
func (s *UserSession) Stop() {
	s.cancel()
	s.wg.Wait()
}
