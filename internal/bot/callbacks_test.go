package bot

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JamesLuiz/House-me/internal/chatstate"
	"github.com/JamesLuiz/House-me/internal/listings"
)

func TestCallback_StaticPages(t *testing.T) {
	tests := []struct {
		data     string
		expected tgbotapi.EditMessageTextConfig
	}{
		{"user_agreement", makeEdit(42, makeBackKeyboard(), MsgAgreement, "March 01, 2025")},
		{"terms_of_service", makeEdit(42, makeBackKeyboard(), MsgTerms, "March 01, 2025")},
		{"help", makeEdit(42, makeBackKeyboard(), MsgHelp)},
		{"back_to_search", makeEdit(42, makeSearchKeyboard(), MsgSearchMenu)},
		{"popular_areas", makeEdit(42, makeAreasKeyboard(), MsgPopularAreas)},
		{"search_type", makeEdit(42, makeTypesKeyboard(), MsgTypePicker)},
		{"property_alerts", makeEdit(42, makeBackKeyboard(), MsgAlerts)},
		{"back_to_menu", makeEdit(42, makeStartKeyboard(testWebAppURL, testSupport), MsgWelcome, "Ada")},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			env := setup(t)
			expectAnswer(env.tg, tt.data, "")
			env.tg.On("Send", tt.expected).Return(tgbotapi.Message{}, nil).Once()

			env.process(t, makeCallbackUpdate(42, tt.data))
			env.tg.AssertExpectations(t)
		})
	}
}

func TestCallback_UnknownDataIsAnsweredOnce(t *testing.T) {
	env := setup(t)
	expectAnswer(env.tg, "bogus", "")

	env.process(t, makeCallbackUpdate(42, "bogus"))

	env.tg.AssertExpectations(t)
	env.tg.AssertNumberOfCalls(t, "Request", 1)
	env.tg.AssertNotCalled(t, "Send", mock.Anything)
}

func TestCallback_NotModifiedEditIsIgnored(t *testing.T) {
	env := setup(t)
	expectAnswer(env.tg, "help", "")
	env.tg.On("Send", mock.AnythingOfType("tgbotapi.EditMessageTextConfig")).
		Return(tgbotapi.Message{}, errors.New("Bad Request: message is not modified")).Once()

	env.process(t, makeCallbackUpdate(42, "help"))
	env.tg.AssertExpectations(t)
}

func TestCallback_WithoutMessageSendsNewMessage(t *testing.T) {
	env := setup(t)
	update := makeCallbackUpdate(42, "help")
	update.CallbackQuery.Message = nil

	expectAnswer(env.tg, "help", "")
	env.tg.On("Send", makeKeyboardMessage(42, makeBackKeyboard(), MsgHelp)).Return(tgbotapi.Message{}, nil).Once()

	env.process(t, update)
	env.tg.AssertExpectations(t)
}

func TestCallback_PromptReplacesLastSearch(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	require.NoError(t, env.chats.Set(ctx, 42, chatstate.Searched(chatstate.SearchLocation, listings.Filter{Location: "Wuse"})))

	expectAnswer(env.tg, "search_price", "")
	env.tg.On("Send", makeEdit(42, makeBackKeyboard(), MsgPromptPrice)).Return(tgbotapi.Message{}, nil).Once()
	env.process(t, makeCallbackUpdate(42, "search_price"))

	state, err := env.chats.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, chatstate.InputPrice, state.WaitingFor)
	assert.Nil(t, state.Search)
}

func TestCallback_AreaSearchNoResults(t *testing.T) {
	env := setup(t)

	expectAnswer(env.tg, "area_Apo", formatReplyText(MsgSearchingArea, "Apo"))
	env.listings.On("Search", listings.Filter{Location: "Apo", Limit: 20}).
		Return(listings.SearchResult{Status: listings.StatusEmpty}).Once()
	env.tg.On("Send", makeEdit(42, makeBackKeyboard(), formatReplyText(MsgNoResultsArea, "Apo"))).
		Return(tgbotapi.Message{}, nil).Once()

	env.process(t, makeCallbackUpdate(42, "area_Apo"))

	env.tg.AssertExpectations(t)
	env.listings.AssertExpectations(t)
}

func TestCallback_TypeSearch(t *testing.T) {
	env := setup(t)
	results := makeListings(3)

	expectAnswer(env.tg, "type_duplex", formatReplyText(MsgSearchingType, "duplex"))
	env.listings.On("Search", listings.Filter{Type: "duplex", Limit: 20}).
		Return(listings.SearchResult{Status: listings.StatusOK, Listings: results}).Once()
	env.tg.On("Send", makeEdit(42, makeListingsPageKeyboard(results, 0), MsgResultsType, "Duplex", "3 properties")).
		Return(tgbotapi.Message{}, nil).Once()

	env.process(t, makeCallbackUpdate(42, "type_duplex"))
	env.tg.AssertExpectations(t)

	state, err := env.chats.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, chatstate.SearchType, state.Search.Kind)
	assert.Equal(t, "duplex", state.Search.Filter.Type)
}

func TestCallback_PageWithoutSearchUsesEmptyFilter(t *testing.T) {
	env := setup(t)

	expectAnswer(env.tg, "page_2", "")
	env.listings.On("Search", listings.Filter{Limit: 20, Skip: 10}).
		Return(listings.SearchResult{Status: listings.StatusEmpty}).Once()
	env.tg.On("Send", makeEdit(42, makeBackKeyboard(), MsgNoResultsPage)).Return(tgbotapi.Message{}, nil).Once()

	env.process(t, makeCallbackUpdate(42, "page_2"))
	env.tg.AssertExpectations(t)
	env.listings.AssertExpectations(t)
}

func TestCallback_PageKeepsPendingPrompt(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	require.NoError(t, env.chats.Set(ctx, 42, chatstate.Awaiting(chatstate.InputPrice)))

	expectAnswer(env.tg, "page_1", "")
	env.listings.On("Search", listings.Filter{Limit: 20, Skip: 5}).
		Return(listings.SearchResult{Status: listings.StatusEmpty}).Once()
	env.tg.On("Send", makeEdit(42, makeBackKeyboard(), MsgNoResultsPage)).Return(tgbotapi.Message{}, nil).Once()

	env.process(t, makeCallbackUpdate(42, "page_1"))
	env.tg.AssertExpectations(t)

	state, err := env.chats.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, chatstate.InputPrice, state.WaitingFor)
	require.NotNil(t, state.Search)
	assert.Equal(t, 1, state.Search.Page)
}

func TestCallback_ShowListingNotFound(t *testing.T) {
	env := setup(t)

	env.listings.On("Get", "missing").Return(listings.LookupResult{Status: listings.StatusEmpty}).Once()
	env.tg.On("Request", tgbotapi.NewCallbackWithAlert("cb-prop_missing", MsgPropertyNotFound)).
		Return(&tgbotapi.APIResponse{Ok: true}, nil).Once()

	env.process(t, makeCallbackUpdate(42, "prop_missing"))
	env.tg.AssertExpectations(t)
	env.tg.AssertNotCalled(t, "Send", mock.Anything)
}

func TestCallback_ShowListingReflectsFavorite(t *testing.T) {
	env := setup(t)
	listing := makeListings(1)[0]
	_, err := env.users.AddFavorite(context.Background(), "42", listing.ID)
	require.NoError(t, err)

	env.listings.On("Get", listing.ID).Return(found(listing)).Once()
	expectAnswer(env.tg, "prop_h1", "")
	env.tg.On("Send", makeEdit(42, makeListingKeyboard(listing.ID, true), formatListingDetail(&listing, listing.ID, testWebAppURL))).
		Return(tgbotapi.Message{}, nil).Once()

	env.process(t, makeCallbackUpdate(42, "prop_h1"))
	env.tg.AssertExpectations(t)
}

func TestCallback_AddFavoriteIsIdempotent(t *testing.T) {
	env := setup(t)
	listing := makeListings(1)[0]
	markup := tgbotapi.NewEditMessageReplyMarkup(42, testMessageID, makeListingKeyboard(listing.ID, true))

	env.listings.On("Get", listing.ID).Return(found(listing)).Twice()
	env.tg.On("Send", markup).Return(tgbotapi.Message{}, nil).Twice()
	expectAnswer(env.tg, "fav_add_h1", MsgFavoriteAdded)
	env.process(t, makeCallbackUpdate(42, "fav_add_h1"))

	expectAnswer(env.tg, "fav_add_h1", MsgFavoriteExists)
	env.process(t, makeCallbackUpdate(42, "fav_add_h1"))

	env.tg.AssertExpectations(t)
	user, err := env.users.GetUser(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, []string{"h1"}, user.Favorites)
}

func TestCallback_RemoveFavorite(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	listing := makeListings(1)[0]
	_, err := env.users.AddFavorite(ctx, "42", listing.ID)
	require.NoError(t, err)

	env.listings.On("Get", listing.ID).Return(found(listing)).Once()
	expectAnswer(env.tg, "fav_remove_h1", MsgFavoriteRemoved)
	env.tg.On("Send", tgbotapi.NewEditMessageReplyMarkup(42, testMessageID, makeListingKeyboard(listing.ID, false))).
		Return(tgbotapi.Message{}, nil).Once()

	env.process(t, makeCallbackUpdate(42, "fav_remove_h1"))
	env.tg.AssertExpectations(t)

	user, err := env.users.GetUser(ctx, "42")
	require.NoError(t, err)
	assert.Empty(t, user.Favorites)
}

func TestCallback_RemoveFavoriteOfUnknownUser(t *testing.T) {
	env := setup(t)

	env.listings.On("Get", "h9").Return(listings.LookupResult{Status: listings.StatusEmpty}).Once()
	expectAnswer(env.tg, "fav_remove_h9", "")

	env.process(t, makeCallbackUpdate(42, "fav_remove_h9"))
	env.tg.AssertExpectations(t)

	user, err := env.users.GetUser(context.Background(), "42")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCallback_FavoritesEmpty(t *testing.T) {
	env := setup(t)

	expectAnswer(env.tg, "my_favorites", "")
	env.tg.On("Send", makeEdit(42, makeBackKeyboard(), MsgFavoritesEmpty)).Return(tgbotapi.Message{}, nil).Once()

	env.process(t, makeCallbackUpdate(42, "my_favorites"))
	env.tg.AssertExpectations(t)
}

func TestCallback_FavoritesSkipsUnavailableListings(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	items := makeListings(2)
	for _, id := range []string{"h1", "gone", "h2"} {
		_, err := env.users.AddFavorite(ctx, "42", id)
		require.NoError(t, err)
	}

	env.listings.On("Get", "h1").Return(found(items[0])).Once()
	env.listings.On("Get", "gone").Return(listings.LookupResult{Status: listings.StatusEmpty}).Once()
	env.listings.On("Get", "h2").Return(found(items[1])).Once()
	expectAnswer(env.tg, "my_favorites", "")
	env.tg.On("Send", makeEdit(42, makeListingsPageKeyboard(items, 0), MsgFavoritesList, "3 saved properties")).
		Return(tgbotapi.Message{}, nil).Once()

	env.process(t, makeCallbackUpdate(42, "my_favorites"))
	env.tg.AssertExpectations(t)

	state, err := env.chats.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, chatstate.SearchFavorites, state.Search.Kind)
}

func TestCallback_FavoritesKeepPendingPrompt(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	_, err := env.users.AddFavorite(ctx, "42", "h1")
	require.NoError(t, err)
	require.NoError(t, env.chats.Set(ctx, 42, chatstate.Awaiting(chatstate.InputTextSearch)))

	items := makeListings(1)
	env.listings.On("Get", "h1").Return(found(items[0])).Once()
	expectAnswer(env.tg, "my_favorites", "")
	env.tg.On("Send", makeEdit(42, makeListingsPageKeyboard(items, 0), MsgFavoritesList, "1 saved property")).
		Return(tgbotapi.Message{}, nil).Once()

	env.process(t, makeCallbackUpdate(42, "my_favorites"))
	env.tg.AssertExpectations(t)

	state, err := env.chats.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, chatstate.InputTextSearch, state.WaitingFor)
	assert.Equal(t, chatstate.SearchFavorites, state.Search.Kind)
}

func TestCallback_FavoritesUnavailable(t *testing.T) {
	env := setup(t)
	_, err := env.users.AddFavorite(context.Background(), "42", "gone")
	require.NoError(t, err)

	env.listings.On("Get", "gone").Return(listings.LookupResult{Status: listings.StatusFailed}).Once()
	expectAnswer(env.tg, "my_favorites", "")
	env.tg.On("Send", makeEdit(42, makeBackKeyboard(), MsgFavoritesUnavailable)).Return(tgbotapi.Message{}, nil).Once()

	env.process(t, makeCallbackUpdate(42, "my_favorites"))
	env.tg.AssertExpectations(t)
}

func TestCallback_ContactAgent(t *testing.T) {
	env := setup(t)
	listing := makeListings(1)[0]
	listing.Agent = &listings.Agent{Name: "Chidi", Phone: "+234 801 234 5678", Email: "chidi@example.com", Verified: true}

	env.listings.On("Get", "h1").Return(found(listing)).Once()
	expectAnswer(env.tg, "contact_h1", "")
	env.tg.On("Send", makeEdit(42, makeAgentContactKeyboard("h1", listing.Agent), formatAgentContact(listing.Agent, "h1", testWebAppURL))).
		Return(tgbotapi.Message{}, nil).Once()

	env.process(t, makeCallbackUpdate(42, "contact_h1"))
	env.tg.AssertExpectations(t)
}

func TestCallback_ContactAgentWithoutAgent(t *testing.T) {
	env := setup(t)

	env.listings.On("Get", "h1").Return(found(makeListings(1)[0])).Once()
	env.tg.On("Request", tgbotapi.NewCallbackWithAlert("cb-contact_h1", MsgNoAgentContact)).
		Return(&tgbotapi.APIResponse{Ok: true}, nil).Once()

	env.process(t, makeCallbackUpdate(42, "contact_h1"))
	env.tg.AssertExpectations(t)
}

func TestParseAction(t *testing.T) {
	actions := []Action{
		ShowAgreement{}, ShowTerms{}, ShowHelp{}, OpenSearch{}, BackToSearch{},
		ShowAreas{}, ShowTypes{}, ShowFavorites{}, ShowAlerts{}, BackToMenu{},
		SearchArea{Area: "Garki II"}, SearchType{Type: "self-con"},
		ShowListing{ID: "65f1c0ffee"}, AddFavorite{ID: "65f1c0ffee"}, RemoveFavorite{ID: "65f1c0ffee"},
		ContactAgent{ID: "65f1c0ffee"}, ChangePage{Page: 3},
		PromptInput{Kind: chatstate.InputLocation}, PromptInput{Kind: chatstate.InputPrice},
		PromptInput{Kind: chatstate.InputTextSearch},
	}

	for _, action := range actions {
		data := EncodeAction(action)
		t.Run(data, func(t *testing.T) {
			parsed, err := ParseAction(data)
			require.NoError(t, err)
			assert.Equal(t, action, parsed)
		})
	}
}

func TestParseAction_Errors(t *testing.T) {
	for _, data := range []string{"", "bogus", "area_", "prop_", "page_", "page_x", "page_-1"} {
		t.Run(data, func(t *testing.T) {
			_, err := ParseAction(data)
			assert.ErrorIs(t, err, ErrUnknownCallback)
		})
	}
}

func TestParseAction_LongerPrefixes(t *testing.T) {
	parsed, err := ParseAction("fav_remove_abc")
	require.NoError(t, err)
	assert.Equal(t, RemoveFavorite{ID: "abc"}, parsed)

	parsed, err = ParseAction("search_text")
	require.NoError(t, err)
	assert.Equal(t, PromptInput{Kind: chatstate.InputTextSearch}, parsed)
}
