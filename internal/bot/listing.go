package bot

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/JamesLuiz/House-me/internal/chatstate"
	"github.com/JamesLuiz/House-me/internal/listings"
)

func (b *Bot) lookupListing(ctx context.Context, id string) listings.LookupResult {
	result := b.listings.Get(ctx, id)
	if result.Status == listings.StatusFailed {
		log.Warn().Err(result.Err).Str("listingId", id).Msg("listing lookup failed")
	}
	return result
}

func (b *Bot) handleShowListing(ctx context.Context, session *UserSession, cb *callbackContext, id string) error {
	result := b.lookupListing(ctx, id)
	if !result.Found() {
		b.answerCallback(cb, MsgPropertyNotFound, true)
		return nil
	}

	user, err := b.users.GetUser(ctx, userKey(session.userId))
	if err != nil {
		return err
	}

	b.editMessage(session, cb, makeListingKeyboard(id, user.HasFavorite(id)),
		formatListingDetail(result.Listing, id, b.opts.WebAppURL))
	return nil
}

func (b *Bot) handleAddFavorite(ctx context.Context, session *UserSession, cb *callbackContext, id string) error {
	added, err := b.users.AddFavorite(ctx, userKey(session.userId), id)
	if err != nil {
		log.Error().Err(err).Int64("userId", session.userId).Str("listingId", id).Msg("failed to add favorite")
		b.answerCallback(cb, MsgFavoriteAddError, true)
		return nil
	}

	if added {
		favoritesTotal.WithLabelValues("add").Inc()
		b.answerCallback(cb, MsgFavoriteAdded, false)
	} else {
		b.answerCallback(cb, MsgFavoriteExists, false)
	}

	if b.lookupListing(ctx, id).Found() {
		b.editKeyboard(session, cb, makeListingKeyboard(id, true))
	}
	return nil
}

func (b *Bot) handleRemoveFavorite(ctx context.Context, session *UserSession, cb *callbackContext, id string) error {
	removed, err := b.users.RemoveFavorite(ctx, userKey(session.userId), id)
	if err != nil {
		log.Error().Err(err).Int64("userId", session.userId).Str("listingId", id).Msg("failed to remove favorite")
		b.answerCallback(cb, MsgFavoriteRemoveError, true)
		return nil
	}

	if removed {
		favoritesTotal.WithLabelValues("remove").Inc()
		b.answerCallback(cb, MsgFavoriteRemoved, false)
	}

	if b.lookupListing(ctx, id).Found() {
		b.editKeyboard(session, cb, makeListingKeyboard(id, false))
	}
	return nil
}

// handleFavorites lists the user's saved listings that still resolve,
// showing display page `page` of them.
func (b *Bot) handleFavorites(ctx context.Context, session *UserSession, cb *callbackContext, page int) error {
	user, err := b.users.GetUser(ctx, userKey(session.userId))
	if err != nil {
		return err
	}
	if user == nil || len(user.Favorites) == 0 {
		b.editMessage(session, cb, makeBackKeyboard(), MsgFavoritesEmpty)
		return nil
	}

	ids := user.Favorites[:min(len(user.Favorites), favoritesLimit)]
	favorites := lo.FilterMap(ids, func(id string, _ int) (listings.Listing, bool) {
		result := b.lookupListing(ctx, id)
		if !result.Found() {
			return listings.Listing{}, false
		}
		l := *result.Listing
		if l.Key() == "" {
			l.ID = id
		}
		return l, true
	})

	state, err := b.chats.Get(ctx, session.userId)
	if err != nil {
		return err
	}
	next := chatstate.WithSearch(state, chatstate.Search{Kind: chatstate.SearchFavorites, Page: page})
	if err := b.chats.Set(ctx, session.userId, next); err != nil {
		return err
	}

	if len(favorites) == 0 {
		b.editMessage(session, cb, makeBackKeyboard(), MsgFavoritesUnavailable)
		return nil
	}

	b.editMessage(session, cb, makeListingsPageKeyboard(favorites, page), MsgFavoritesList,
		pluralize("saved property", "saved properties", len(user.Favorites)))
	return nil
}

func (b *Bot) handleContactAgent(ctx context.Context, session *UserSession, cb *callbackContext, id string) {
	result := b.lookupListing(ctx, id)
	if !result.Found() || result.Listing.Agent == nil {
		b.answerCallback(cb, MsgNoAgentContact, true)
		return
	}

	agent := result.Listing.Agent
	b.editMessage(session, cb, makeAgentContactKeyboard(id, agent), formatAgentContact(agent, id, b.opts.WebAppURL))
}
