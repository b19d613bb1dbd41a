package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/JamesLuiz/House-me/internal/chatstate"
)

// ErrUnknownCallback is returned by ParseAction for callback data no button produces.
var ErrUnknownCallback = errors.New("unknown callback data")

// Action is the decoded form of an inline button's callback data. The set of
// implementations is closed; the dispatcher switches over all of them.
type Action interface {
	callbackData() string
}

type (
	ShowAgreement  struct{}
	ShowTerms      struct{}
	ShowHelp       struct{}
	OpenSearch     struct{}
	BackToSearch   struct{}
	ShowAreas      struct{}
	ShowTypes      struct{}
	ShowFavorites  struct{}
	ShowAlerts     struct{}
	BackToMenu     struct{}
	SearchArea     struct{ Area string }
	SearchType     struct{ Type string }
	ShowListing    struct{ ID string }
	AddFavorite    struct{ ID string }
	RemoveFavorite struct{ ID string }
	ContactAgent   struct{ ID string }
	ChangePage     struct{ Page int }
	PromptInput    struct{ Kind chatstate.InputKind }
)

const (
	cbAgreement     = "user_agreement"
	cbTerms         = "terms_of_service"
	cbHelp          = "help"
	cbSearch        = "search_properties"
	cbBackToSearch  = "back_to_search"
	cbAreas         = "popular_areas"
	cbTypes         = "search_type"
	cbFavorites     = "my_favorites"
	cbAlerts        = "property_alerts"
	cbBackToMenu    = "back_to_menu"
	cbLocation      = "search_location"
	cbPrice         = "search_price"
	cbText          = "search_text"
	cbAreaPrefix    = "area_"
	cbTypePrefix    = "type_"
	cbListingPrefix = "prop_"
	cbFavAddPrefix  = "fav_add_"
	cbFavRemPrefix  = "fav_remove_"
	cbContactPrefix = "contact_"
	cbPagePrefix    = "page_"
)

func (ShowAgreement) callbackData() string  { return cbAgreement }
func (ShowTerms) callbackData() string      { return cbTerms }
func (ShowHelp) callbackData() string       { return cbHelp }
func (OpenSearch) callbackData() string     { return cbSearch }
func (BackToSearch) callbackData() string   { return cbBackToSearch }
func (ShowAreas) callbackData() string      { return cbAreas }
func (ShowTypes) callbackData() string      { return cbTypes }
func (ShowFavorites) callbackData() string  { return cbFavorites }
func (ShowAlerts) callbackData() string     { return cbAlerts }
func (BackToMenu) callbackData() string     { return cbBackToMenu }
func (a SearchArea) callbackData() string   { return cbAreaPrefix + a.Area }
func (a SearchType) callbackData() string   { return cbTypePrefix + a.Type }
func (a ShowListing) callbackData() string  { return cbListingPrefix + a.ID }
func (a AddFavorite) callbackData() string  { return cbFavAddPrefix + a.ID }
func (a ContactAgent) callbackData() string { return cbContactPrefix + a.ID }
func (a ChangePage) callbackData() string   { return cbPagePrefix + strconv.Itoa(a.Page) }

func (a RemoveFavorite) callbackData() string { return cbFavRemPrefix + a.ID }

func (a PromptInput) callbackData() string {
	switch a.Kind {
	case chatstate.InputLocation:
		return cbLocation
	case chatstate.InputPrice:
		return cbPrice
	default:
		return cbText
	}
}

// EncodeAction returns the callback data for a button.
func EncodeAction(a Action) string {
	return a.callbackData()
}

var exactActions = map[string]Action{
	cbAgreement:    ShowAgreement{},
	cbTerms:        ShowTerms{},
	cbHelp:         ShowHelp{},
	cbSearch:       OpenSearch{},
	cbBackToSearch: BackToSearch{},
	cbAreas:        ShowAreas{},
	cbTypes:        ShowTypes{},
	cbFavorites:    ShowFavorites{},
	cbAlerts:       ShowAlerts{},
	cbBackToMenu:   BackToMenu{},
	cbLocation:     PromptInput{Kind: chatstate.InputLocation},
	cbPrice:        PromptInput{Kind: chatstate.InputPrice},
	cbText:         PromptInput{Kind: chatstate.InputTextSearch},
}

// ParseAction decodes callback data. Exact names are matched before prefixes.
func ParseAction(data string) (Action, error) {
	if a, ok := exactActions[data]; ok {
		return a, nil
	}

	if rest, ok := cutPrefix(data, cbAreaPrefix); ok {
		return SearchArea{Area: rest}, nil
	}
	if rest, ok := cutPrefix(data, cbTypePrefix); ok {
		return SearchType{Type: rest}, nil
	}
	if rest, ok := cutPrefix(data, cbListingPrefix); ok {
		return ShowListing{ID: rest}, nil
	}
	if rest, ok := cutPrefix(data, cbFavAddPrefix); ok {
		return AddFavorite{ID: rest}, nil
	}
	if rest, ok := cutPrefix(data, cbFavRemPrefix); ok {
		return RemoveFavorite{ID: rest}, nil
	}
	if rest, ok := cutPrefix(data, cbContactPrefix); ok {
		return ContactAgent{ID: rest}, nil
	}
	if rest, ok := cutPrefix(data, cbPagePrefix); ok {
		page, err := strconv.Atoi(rest)
		if err != nil || page < 0 {
			return nil, fmt.Errorf("%w: bad page %q", ErrUnknownCallback, rest)
		}
		return ChangePage{Page: page}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
}

// cutPrefix is strings.CutPrefix that also rejects an empty remainder.
func cutPrefix(s, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(s, prefix)
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}
