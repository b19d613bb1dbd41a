package bot

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/JamesLuiz/House-me/internal/chatstate"
	"github.com/JamesLuiz/House-me/internal/listings"
)

// search runs a listings query and records its outcome.
func (b *Bot) search(ctx context.Context, kind chatstate.SearchKind, filter listings.Filter) listings.SearchResult {
	result := b.listings.Search(ctx, filter)
	searchesTotal.WithLabelValues(string(kind), result.Status.String()).Inc()
	if result.Status == listings.StatusFailed {
		log.Warn().Err(result.Err).Str("kind", string(kind)).Interface("filter", filter).Msg("listing search failed")
	}
	return result
}

// startSearch remembers the filter for paging and runs the first page.
func (b *Bot) startSearch(ctx context.Context, userId int64, kind chatstate.SearchKind, filter listings.Filter) (listings.SearchResult, error) {
	filter.Limit = serverPageSize
	if err := b.chats.Set(ctx, userId, chatstate.Searched(kind, filter)); err != nil {
		return listings.SearchResult{}, err
	}
	return b.search(ctx, kind, filter), nil
}

// showResults renders one display page of a result list, or the empty
// text when nothing was found. Failed searches render as empty.
func (b *Bot) showResults(session *UserSession, cb *callbackContext, result listings.SearchResult, page int, empty string, header string, a ...any) {
	if result.Status != listings.StatusOK {
		b.editMessage(session, cb, makeBackKeyboard(), empty)
		return
	}
	b.editMessage(session, cb, makeListingsPageKeyboard(result.Listings, page), header, a...)
}

func (b *Bot) handleAreaSearch(ctx context.Context, session *UserSession, cb *callbackContext, area string) error {
	b.answerCallback(cb, formatReplyText(MsgSearchingArea, area), false)

	result, err := b.startSearch(ctx, session.userId, chatstate.SearchLocation, listings.Filter{Location: area})
	if err != nil {
		return err
	}

	name := escapeMarkdown(area)
	b.showResults(session, cb, result, 0,
		formatReplyText(MsgNoResultsArea, name),
		MsgResultsLocation, name, pluralizeProperties(len(result.Listings)))
	return nil
}

func (b *Bot) handleTypeSearch(ctx context.Context, session *UserSession, cb *callbackContext, propertyType string) error {
	b.answerCallback(cb, formatReplyText(MsgSearchingType, propertyType), false)

	result, err := b.startSearch(ctx, session.userId, chatstate.SearchType, listings.Filter{Type: propertyType})
	if err != nil {
		return err
	}

	name := escapeMarkdown(propertyType)
	b.showResults(session, cb, result, 0,
		formatReplyText(MsgNoResultsType, name),
		MsgResultsType, escapeMarkdown(capitalize(propertyType)), pluralizeProperties(len(result.Listings)))
	return nil
}

// handlePage moves to another page of the last result list. Every page
// refetches serverPageSize listings skipped by page*displayPageSize and
// then slices display page `page` out of them, so the two offsets compound.
// A pending text prompt survives paging.
func (b *Bot) handlePage(ctx context.Context, session *UserSession, cb *callbackContext, page int) error {
	state, err := b.chats.Get(ctx, session.userId)
	if err != nil {
		return err
	}

	if state != nil && state.Search != nil && state.Search.Kind == chatstate.SearchFavorites {
		return b.handleFavorites(ctx, session, cb, page)
	}

	kind := chatstate.SearchKind("")
	var filter listings.Filter
	if state != nil && state.Search != nil {
		kind = state.Search.Kind
		filter = state.Search.Filter
	}
	filter.Limit = serverPageSize
	filter.Skip = page * displayPageSize

	next := chatstate.WithSearch(state, chatstate.Search{Kind: kind, Filter: filter, Page: page})
	if err := b.chats.Set(ctx, session.userId, next); err != nil {
		return err
	}

	result := b.search(ctx, kind, filter)
	b.showResults(session, cb, result, page, MsgNoResultsPage,
		MsgResultsPage, pluralizeProperties(len(result.Listings)), page+1)
	return nil
}
