package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/JamesLuiz/House-me/internal/chatstate"
	"github.com/JamesLuiz/House-me/internal/listings"
)

// ErrInvalidPrice is returned for price input that is neither "min-max"
// nor a single maximum.
var ErrInvalidPrice = errors.New("invalid price format")

// handleTextInput consumes free text as the input the user was prompted
// for. Text from users without a pending prompt is ignored, and messages
// without text (photos, stickers) leave the prompt pending.
func (b *Bot) handleTextInput(ctx context.Context, session *UserSession, message *tgbotapi.Message) error {
	if message.Text == "" {
		return nil
	}

	state, err := b.chats.Get(ctx, session.userId)
	if err != nil {
		return err
	}
	if state.IsIdle() {
		log.Debug().Int64("userId", session.userId).Msg("ignoring text without pending prompt")
		return nil
	}

	// The prompt is consumed whatever happens next
	if err := b.chats.Clear(ctx, session.userId); err != nil {
		return err
	}

	text := strings.TrimSpace(message.Text)
	switch state.WaitingFor {
	case chatstate.InputLocation:
		return b.searchByLocation(ctx, session, text)
	case chatstate.InputPrice:
		return b.searchByPrice(ctx, session, text)
	case chatstate.InputTextSearch:
		return b.searchByText(ctx, session, text)
	}

	log.Warn().Int64("userId", session.userId).Str("waitingFor", string(state.WaitingFor)).Msg("unknown pending input")
	return nil
}

func (b *Bot) searchByLocation(ctx context.Context, session *UserSession, location string) error {
	name := escapeMarkdown(location)
	session.reply(MsgSearchingLocation, name)

	result, err := b.startSearch(ctx, session.userId, chatstate.SearchLocation, listings.Filter{Location: location})
	if err != nil {
		return err
	}
	b.showResults(session, nil, result, 0,
		formatReplyText(MsgNoResultsLocation, name),
		MsgResultsLocation, name, pluralizeProperties(len(result.Listings)))
	return nil
}

func (b *Bot) searchByPrice(ctx context.Context, session *UserSession, text string) error {
	filter, err := parsePriceRange(text)
	if err != nil {
		keyboard := makeBackKeyboard()
		session.replyWithKeyboard(&keyboard, MsgInvalidPrice)
		return nil
	}

	if filter.MinPrice > 0 {
		session.reply(MsgSearchingRange, formatPrice(float64(filter.MinPrice)), formatPrice(float64(filter.MaxPrice)))
	} else {
		session.reply(MsgSearchingMaxPrice, formatPrice(float64(filter.MaxPrice)))
	}

	result, err := b.startSearch(ctx, session.userId, chatstate.SearchPrice, filter)
	if err != nil {
		return err
	}
	b.showResults(session, nil, result, 0, MsgNoResultsPrice,
		MsgResultsPrice, pluralizeProperties(len(result.Listings)))
	return nil
}

func (b *Bot) searchByText(ctx context.Context, session *UserSession, query string) error {
	q := escapeMarkdown(query)
	session.reply(MsgSearchingText, q)

	result, err := b.startSearch(ctx, session.userId, chatstate.SearchText, listings.Filter{Search: query})
	if err != nil {
		return err
	}
	b.showResults(session, nil, result, 0,
		formatReplyText(MsgNoResultsText, q),
		MsgResultsText, q, pluralizeProperties(len(result.Listings)))
	return nil
}

// parsePriceRange reads "min-max" or a single maximum price. Thousands
// separators and the naira sign are ignored.
func parsePriceRange(text string) (listings.Filter, error) {
	cleaned := strings.NewReplacer(",", "", "₦", "", " ", "").Replace(text)
	if cleaned == "" {
		return listings.Filter{}, ErrInvalidPrice
	}

	if minText, maxText, ok := strings.Cut(cleaned, "-"); ok {
		minPrice, err := parsePrice(minText)
		if err != nil {
			return listings.Filter{}, err
		}
		maxPrice, err := parsePrice(maxText)
		if err != nil {
			return listings.Filter{}, err
		}
		return listings.Filter{MinPrice: minPrice, MaxPrice: maxPrice}, nil
	}

	maxPrice, err := parsePrice(cleaned)
	if err != nil {
		return listings.Filter{}, err
	}
	return listings.Filter{MaxPrice: maxPrice}, nil
}

func parsePrice(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, ErrInvalidPrice
	}
	return n, nil
}
