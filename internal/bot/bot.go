package bot

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/JamesLuiz/House-me/internal/chatstate"
	"github.com/JamesLuiz/House-me/internal/jobs"
	"github.com/JamesLuiz/House-me/internal/listings"
	"github.com/JamesLuiz/House-me/internal/storage"
)

// BotAPI defines the interface for Telegram bot API operations.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// ListingSource reads property listings.
type ListingSource interface {
	Search(ctx context.Context, filter listings.Filter) listings.SearchResult
	Get(ctx context.Context, id string) listings.LookupResult
}

// Options are the deployment specific settings of the bot.
type Options struct {
	WebAppURL         string
	SupportURL        string
	AdminID           int64
	ReferralBonus     int64
	SessionIdleTTL    time.Duration
	RefreshDelay      time.Duration
	RefreshMaxRuntime time.Duration
}

// Bot is the main Telegram bot handler.
type Bot struct {
	tg        BotAPI
	state     *BotState
	users     storage.UserStore
	chats     chatstate.Store
	listings  ListingSource
	refresher *jobs.Refresher
	http      *resty.Client
	opts      Options
	now       func() time.Time
}

// NewBot creates a new Bot instance.
func NewBot(tg BotAPI, users storage.UserStore, chats chatstate.Store, source ListingSource, opts Options) *Bot {
	bot := &Bot{
		tg:       tg,
		users:    users,
		chats:    chats,
		listings: source,
		http:     newPhotoClient(),
		opts:     opts,
		now:      time.Now,
	}

	bot.state = bot.NewBotState()
	bot.refresher = jobs.NewRefresher(users, bot, jobs.NewGuard(opts.RefreshMaxRuntime), opts.RefreshDelay)
	bot.refresher.OnDone = bot.notifyRefreshDone

	return bot
}

// Init connects the user store and registers the command menu. Failing to
// register commands is logged and does not fail initialization.
func (b *Bot) Init(ctx context.Context) error {
	if err := b.users.Init(ctx); err != nil {
		return err
	}
	if err := RegisterCommands(b.tg, b.opts.AdminID); err != nil {
		log.Warn().Err(err).Msg("could not register bot commands")
	}
	return nil
}

// Ready reports whether the user store has been initialized.
func (b *Bot) Ready() bool {
	return b.users.Initialized()
}

// Run reaps idle session workers until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	b.state.RunReaper(ctx, b.opts.SessionIdleTTL)
}

// Shutdown stops a running image refresh and all session workers.
func (b *Bot) Shutdown() {
	if run, err := b.refresher.Terminate(); err == nil {
		<-run.Done()
	}
	b.state.Shutdown()
}

// HandleUpdate is the main message router.
// It dispatches messages to the appropriate session worker for sequential processing.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	_ = b.dispatchUpdate(ctx, update, false)
}

// ProcessUpdate is like HandleUpdate but waits for the update to be processed.
// It returns an error only when processing could not complete.
func (b *Bot) ProcessUpdate(ctx context.Context, update tgbotapi.Update) error {
	return b.dispatchUpdate(ctx, update, true)
}

// dispatchUpdate routes updates to the appropriate session worker.
// If sync is true, it waits for message processing to complete.
func (b *Bot) dispatchUpdate(ctx context.Context, update tgbotapi.Update, sync bool) error {
	var userId int64
	var msg SessionMessage

	// Determine user ID from the update
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		userId = update.CallbackQuery.From.ID
		msg = SessionMessage{Type: MessageTypeCallback, Ctx: ctx, CallbackQuery: update.CallbackQuery}
		log.Info().Int("updateId", update.UpdateID).Int64("userId", userId).Str("data", update.CallbackQuery.Data).Msg("got callback")
	case update.Message != nil && update.Message.From != nil:
		userId = update.Message.From.ID
		msg = SessionMessage{Type: MessageTypeText, Ctx: ctx, Message: update.Message, Text: update.Message.Text}
		log.Info().Int("updateId", update.UpdateID).Int64("userId", userId).Str("text", update.Message.Text).Msg("got message")
	default:
		log.Debug().Int("updateId", update.UpdateID).Msg("ignoring update without message or callback")
		return nil
	}

	session := b.state.acquireUserSession(userId)
	if !sync {
		session.Send(msg)
		return nil
	}

	err := session.SendSync(msg)
	if errors.Is(err, ErrHandlerPanic) {
		updatesTotal.WithLabelValues(string(msg.Type), "panic").Inc()
	}
	return err
}

// HandleSessionMessage implements MessageHandler interface.
// This is called by the session worker goroutine for sequential processing.
func (b *Bot) HandleSessionMessage(ctx context.Context, session *UserSession, msg SessionMessage) {
	start := time.Now()
	var err error

	switch msg.Type {
	case MessageTypeCallback:
		err = b.handleCallbackQuery(ctx, session, msg.CallbackQuery)
	case MessageTypeText:
		err = b.handleTextMessage(ctx, session, msg.Message)
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
		log.Error().Err(err).Int64("userId", session.userId).Str("type", string(msg.Type)).Msg("failed to handle update")
	}
	updatesTotal.WithLabelValues(string(msg.Type), outcome).Inc()
	updateDuration.WithLabelValues(string(msg.Type)).Observe(time.Since(start).Seconds())
}

// handleTextMessage processes text messages.
// Called from session worker - no locking needed.
func (b *Bot) handleTextMessage(ctx context.Context, session *UserSession, message *tgbotapi.Message) error {
	cmd, args := parseCommand(message)

	var err error
	switch cmd.Kind {
	case CommandStart:
		err = b.handleStart(ctx, session, message, args)
	case CommandHelp:
		b.replyStatic(session, makeBackKeyboard(), MsgHelp)
	case CommandTerms:
		b.replyStatic(session, makeBackKeyboard(), MsgTerms, b.lastUpdated())
	case CommandAgreement:
		b.replyStatic(session, makeBackKeyboard(), MsgAgreement, b.lastUpdated())
	case CommandContact:
		b.replyStatic(session, makeContactKeyboard(b.opts.SupportURL), MsgContact, b.opts.SupportURL)
	case CommandRefreshImages, CommandTerminate, CommandStatus, CommandExport:
		err = b.handleAdminCommand(ctx, session, cmd)
	case CommandUnknown:
		err = b.handleTextInput(ctx, session, message)
	}

	if err != nil {
		session.reply(MsgUnexpectedErr)
	}
	return err
}

func (b *Bot) replyStatic(session *UserSession, keyboard tgbotapi.InlineKeyboardMarkup, text string, a ...any) {
	session.replyWithKeyboard(&keyboard, text, a...)
}

func (b *Bot) lastUpdated() string {
	return b.now().Format(LastUpdatedLayout)
}

func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func firstNameOf(u *tgbotapi.User) string {
	if u == nil || u.FirstName == "" {
		return DefaultFirstName
	}
	return u.FirstName
}
