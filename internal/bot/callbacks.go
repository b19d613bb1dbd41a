package bot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/JamesLuiz/House-me/internal/chatstate"
)

// callbackContext tracks whether a callback query has been answered, so
// that every query gets exactly one answer.
type callbackContext struct {
	query    *tgbotapi.CallbackQuery
	answered bool
}

func (b *Bot) answerCallback(cb *callbackContext, text string, alert bool) {
	if cb.answered {
		return
	}
	cb.answered = true

	config := tgbotapi.NewCallback(cb.query.ID, text)
	config.ShowAlert = alert
	if _, err := b.tg.Request(config); err != nil {
		log.Warn().Err(err).Str("callbackId", cb.query.ID).Msg("failed to answer callback")
	}
}

// handleCallbackQuery handles inline keyboard button presses.
// Called from session worker - no locking needed.
func (b *Bot) handleCallbackQuery(ctx context.Context, session *UserSession, query *tgbotapi.CallbackQuery) error {
	cb := &callbackContext{query: query}
	// Answer the callback to remove the loading state
	defer b.answerCallback(cb, "", false)

	action, err := ParseAction(query.Data)
	if err != nil {
		log.Warn().Err(err).Int64("userId", session.userId).Msg("ignoring callback")
		return nil
	}

	switch a := action.(type) {
	case ShowAgreement:
		b.editMessage(session, cb, makeBackKeyboard(), MsgAgreement, b.lastUpdated())
	case ShowTerms:
		b.editMessage(session, cb, makeBackKeyboard(), MsgTerms, b.lastUpdated())
	case ShowHelp:
		b.editMessage(session, cb, makeBackKeyboard(), MsgHelp)
	case OpenSearch, BackToSearch:
		b.editMessage(session, cb, makeSearchKeyboard(), MsgSearchMenu)
	case ShowAreas:
		b.editMessage(session, cb, makeAreasKeyboard(), MsgPopularAreas)
	case ShowTypes:
		b.editMessage(session, cb, makeTypesKeyboard(), MsgTypePicker)
	case ShowAlerts:
		b.editMessage(session, cb, makeBackKeyboard(), MsgAlerts)
	case BackToMenu:
		b.editMessage(session, cb, makeStartKeyboard(b.opts.WebAppURL, b.opts.SupportURL),
			MsgWelcome, escapeMarkdown(firstNameOf(query.From)))
	case PromptInput:
		err = b.handlePromptInput(ctx, session, cb, a.Kind)
	case SearchArea:
		err = b.handleAreaSearch(ctx, session, cb, a.Area)
	case SearchType:
		err = b.handleTypeSearch(ctx, session, cb, a.Type)
	case ChangePage:
		err = b.handlePage(ctx, session, cb, a.Page)
	case ShowListing:
		err = b.handleShowListing(ctx, session, cb, a.ID)
	case AddFavorite:
		err = b.handleAddFavorite(ctx, session, cb, a.ID)
	case RemoveFavorite:
		err = b.handleRemoveFavorite(ctx, session, cb, a.ID)
	case ShowFavorites:
		err = b.handleFavorites(ctx, session, cb, 0)
	case ContactAgent:
		b.handleContactAgent(ctx, session, cb, a.ID)
	default:
		log.Error().Str("action", EncodeAction(action)).Msg("callback action without handler")
	}

	if err != nil {
		b.answerCallback(cb, MsgCallbackErr, false)
	}
	return err
}

func (b *Bot) handlePromptInput(ctx context.Context, session *UserSession, cb *callbackContext, kind chatstate.InputKind) error {
	var text string
	switch kind {
	case chatstate.InputLocation:
		text = MsgPromptLocation
	case chatstate.InputPrice:
		text = MsgPromptPrice
	case chatstate.InputTextSearch:
		text = MsgPromptText
	default:
		return errors.New("unknown input kind " + string(kind))
	}

	b.editMessage(session, cb, makeBackKeyboard(), text)
	return b.chats.Set(ctx, session.userId, chatstate.Awaiting(kind))
}

// editMessage replaces the text and keyboard of the message the button was
// attached to. Without an originating message a new one is sent instead.
func (b *Bot) editMessage(session *UserSession, cb *callbackContext, keyboard tgbotapi.InlineKeyboardMarkup, text string, a ...any) {
	if cb == nil || cb.query.Message == nil {
		session.replyWithKeyboard(&keyboard, text, a...)
		return
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(
		cb.query.Message.Chat.ID,
		cb.query.Message.MessageID,
		formatReplyText(text, a...),
		keyboard,
	)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.tg.Send(edit); err != nil {
		logEditError(session.userId, err)
	}
}

// editKeyboard replaces only the inline keyboard of the callback's message.
func (b *Bot) editKeyboard(session *UserSession, cb *callbackContext, keyboard tgbotapi.InlineKeyboardMarkup) {
	if cb.query.Message == nil {
		return
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(cb.query.Message.Chat.ID, cb.query.Message.MessageID, keyboard)
	if _, err := b.tg.Send(edit); err != nil {
		logEditError(session.userId, err)
	}
}

func logEditError(userId int64, err error) {
	// Telegram rejects edits that change nothing, e.g. a double tap
	if strings.Contains(err.Error(), "message is not modified") {
		log.Debug().Int64("userId", userId).Msg("message not modified")
		return
	}
	log.Error().Err(err).Int64("userId", userId).Msg("failed to edit message")
}
