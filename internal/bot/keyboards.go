package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/JamesLuiz/House-me/internal/chatstate"
	"github.com/JamesLuiz/House-me/internal/listings"
)

const (
	// serverPageSize is the limit sent to the listings API.
	serverPageSize = 20
	// displayPageSize is how many listings one inline page shows.
	displayPageSize = 5
	// areaPickerSize is how many popular areas the picker offers.
	areaPickerSize = 12
	// favoritesLimit caps how many favorites are fetched for display.
	favoritesLimit = 20
)

// PopularAreas are the most searched Abuja areas.
var PopularAreas = []string{
	"Maitama", "Asokoro", "Wuse", "Garki", "Gwarinpa", "Jabi", "Utako",
	"Kubwa", "Nyanya", "Lugbe", "Karu", "Gwarinpa", "Katampe", "Jahi",
	"Gudu", "Durumi", "Lokogoma", "Apo", "Wuye", "Garki II",
}

// PropertyTypes are the listing types the type picker offers.
var PropertyTypes = []string{"duplex", "self-con", "bungalow", "apartment", "mansion", "flat", "house"}

func actionButton(text string, action Action) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, EncodeAction(action))
}

func makeStartKeyboard(webAppURL, supportURL string) tgbotapi.InlineKeyboardMarkup {
	openApp := tgbotapi.NewInlineKeyboardButtonURL(BtnOpenApp, webAppURL+"/")
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(openApp),
		tgbotapi.NewInlineKeyboardRow(
			actionButton(BtnSearch, OpenSearch{}),
			actionButton(BtnFavorites, ShowFavorites{}),
		),
		tgbotapi.NewInlineKeyboardRow(
			actionButton(BtnPopularAreas, ShowAreas{}),
			actionButton(BtnAlerts, ShowAlerts{}),
		),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(BtnSupport, supportURL)),
		tgbotapi.NewInlineKeyboardRow(
			actionButton(BtnAgreement, ShowAgreement{}),
			actionButton(BtnTerms, ShowTerms{}),
			actionButton(BtnHelp, ShowHelp{}),
		),
	)
}

func makeBackKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(actionButton(BtnBackToMenu, BackToMenu{})),
	)
}

func makeSearchKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(actionButton(BtnByLocation, PromptInput{Kind: chatstate.InputLocation})),
		tgbotapi.NewInlineKeyboardRow(actionButton(BtnByPrice, PromptInput{Kind: chatstate.InputPrice})),
		tgbotapi.NewInlineKeyboardRow(actionButton(BtnByType, ShowTypes{})),
		tgbotapi.NewInlineKeyboardRow(actionButton(BtnTextSearch, PromptInput{Kind: chatstate.InputTextSearch})),
		tgbotapi.NewInlineKeyboardRow(actionButton(BtnBack, BackToMenu{})),
	)
}

func makeAreasKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	areas := lo.Uniq(PopularAreas)
	for _, area := range areas[:min(areaPickerSize, len(areas))] {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			actionButton(fmt.Sprintf(BtnAreaFmt, area), SearchArea{Area: area}),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(actionButton(BtnBack, BackToMenu{})))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func makeTypesKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range PropertyTypes {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			actionButton(fmt.Sprintf(BtnTypeFmt, capitalize(t)), SearchType{Type: t}),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(actionButton(BtnBack, OpenSearch{})))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func makeListingKeyboard(id string, isFavorite bool) tgbotapi.InlineKeyboardMarkup {
	favorite := actionButton(BtnAddFavorite, AddFavorite{ID: id})
	if isFavorite {
		favorite = actionButton(BtnRemoveFavorite, RemoveFavorite{ID: id})
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(favorite),
		tgbotapi.NewInlineKeyboardRow(actionButton(BtnContactAgent, ContactAgent{ID: id})),
		tgbotapi.NewInlineKeyboardRow(actionButton(BtnBackToSearch, BackToSearch{})),
	)
}

// makeListingsPageKeyboard shows display page `page` of the fetched
// listings, with Previous/Next when there is more to see.
func makeListingsPageKeyboard(items []listings.Listing, page int) tgbotapi.InlineKeyboardMarkup {
	start := min(page*displayPageSize, len(items))
	end := min(start+displayPageSize, len(items))

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, l := range items[start:end] {
		title := truncate(orDefault(l.Title, MsgListingUntitled), listingTitleMaxLen)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			actionButton(fmt.Sprintf(BtnListingFmt, title), ShowListing{ID: l.Key()}),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, actionButton(BtnPrevious, ChangePage{Page: page - 1}))
	}
	if end < len(items) {
		nav = append(nav, actionButton(BtnNext, ChangePage{Page: page + 1}))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(actionButton(BtnBack, BackToSearch{})))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func makeAgentContactKeyboard(id string, agent *listings.Agent) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if agent.Phone != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(BtnWhatsApp, whatsAppURL(agent.Phone)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(actionButton(BtnBackToProperty, ShowListing{ID: id})))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func makeContactKeyboard(supportURL string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(BtnChatWhatsApp, supportURL)),
		tgbotapi.NewInlineKeyboardRow(actionButton(BtnBackToMenu, BackToMenu{})),
	)
}
