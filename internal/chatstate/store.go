// Package chatstate keeps transient per-user interaction state: which free-text
// input the user is expected to send next, and the last search used for
// pagination. Entries expire; nothing here is durable.
package chatstate

import (
	"context"
	"time"

	"github.com/JamesLuiz/House-me/internal/listings"
)

// InputKind names the free-text input a user is prompted for.
type InputKind string

const (
	InputLocation   InputKind = "location"
	InputPrice      InputKind = "price"
	InputTextSearch InputKind = "text_search"
)

// SearchKind names how the last result list was produced.
type SearchKind string

const (
	SearchLocation  SearchKind = "location"
	SearchType      SearchKind = "type"
	SearchPrice     SearchKind = "price"
	SearchText      SearchKind = "text"
	SearchFavorites SearchKind = "favorites"
)

// Search is the last filter a user searched with, kept for paging.
type Search struct {
	Kind   SearchKind      `json:"kind"`
	Filter listings.Filter `json:"filter"`
	Page   int             `json:"page"`
}

// State is a pending text prompt, the last search, or both once a user pages
// results while a prompt is open.
type State struct {
	WaitingFor InputKind `json:"waiting_for,omitempty"`
	Search     *Search   `json:"search,omitempty"`
}

// Awaiting returns a state prompting for kind. It replaces any previous search.
func Awaiting(kind InputKind) State {
	return State{WaitingFor: kind}
}

// Searched returns a state recording a search at page 0.
func Searched(kind SearchKind, filter listings.Filter) State {
	return State{Search: &Search{Kind: kind, Filter: filter}}
}

// WithSearch returns prev with its search replaced, keeping any pending prompt.
func WithSearch(prev *State, search Search) State {
	var next State
	if prev != nil {
		next.WaitingFor = prev.WaitingFor
	}
	next.Search = &search
	return next
}

// IsIdle reports whether no text input is pending.
func (s *State) IsIdle() bool {
	return s == nil || s.WaitingFor == ""
}

// Store keeps session state by Telegram user id. Get returns nil, nil for
// unknown or expired users.
type Store interface {
	Get(ctx context.Context, userID int64) (*State, error)
	Set(ctx context.Context, userID int64, state State) error
	Clear(ctx context.Context, userID int64) error
	// Backend names the implementation for status reports.
	Backend() string
}

// DefaultTTL is used when a store is created with a non-positive TTL.
const DefaultTTL = 24 * time.Hour
