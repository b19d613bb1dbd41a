package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// ErrNotFound is returned by updates that require an existing user.
var ErrNotFound = errors.New("user not found")

// User is a persisted bot user. ID is the Telegram user id as a string and
// never changes once created.
type User struct {
	ID           string              `bson:"_id"`
	FirstName    string              `bson:"first_name"`
	LastName     string              `bson:"last_name"`
	Username     string              `bson:"username,omitempty"`
	LanguageCode string              `bson:"language_code"`
	IsPremium    bool                `bson:"is_premium"`
	UserImage    string              `bson:"user_image,omitempty"`
	Favorites    []string            `bson:"favorites"`
	Balance      int64               `bson:"balance"`
	ReferredBy   string              `bson:"referredBy,omitempty"`
	Referrals    map[string]Referral `bson:"referrals,omitempty"`
	Level        int                 `bson:"level"`
	CreatedAt    time.Time           `bson:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at"`
}

// Referral records the bonus credited for one referred user.
type Referral struct {
	Amount    int64     `bson:"amount"`
	CreatedAt time.Time `bson:"created_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasFavorite reports whether listingID is among the user's favorites.
func (u *User) HasFavorite(listingID string) bool {
	if u == nil {
		return false
	}
	return lo.Contains(u.Favorites, listingID)
}

// UserStore persists user records. Lookups return nil, nil when the user
// does not exist.
type UserStore interface {
	// Init verifies the connection and prepares indexes or tables. It is
	// safe to call more than once.
	Init(ctx context.Context) error
	Initialized() bool

	GetUser(ctx context.Context, id string) (*User, error)
	// CreateUser inserts the user unless a user with the same id exists.
	// It reports whether a new record was written.
	CreateUser(ctx context.Context, user *User) (bool, error)

	// AddFavorite adds listingID, creating the user record if needed. It
	// reports whether the favorites changed.
	AddFavorite(ctx context.Context, userID, listingID string) (bool, error)
	// RemoveFavorite removes listingID. A missing user or a listing that is
	// not a favorite is a no-op.
	RemoveFavorite(ctx context.Context, userID, listingID string) (bool, error)

	SetUserImage(ctx context.Context, userID, imageURL string) error
	// ApplyReferral credits amount to the referrer and records the referred
	// user under referrals.<referredID>.
	ApplyReferral(ctx context.Context, referrerID, referredID string, amount int64) error

	// EachUser calls fn for every user ordered by id. Iteration stops at the
	// first error, which is returned.
	EachUser(ctx context.Context, fn func(*User) error) error
	CountUsers(ctx context.Context) (int64, error)

	Close(ctx context.Context) error
}

// Open selects a store implementation from the connection string scheme:
// mongodb:// and mongodb+srv:// use MongoDB, sqlite:// uses a local SQLite file.
func Open(ctx context.Context, uri, database string) (UserStore, error) {
	switch {
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		return NewMongoStore(ctx, uri, database)
	case strings.HasPrefix(uri, "sqlite://"):
		return NewSQLiteStore(strings.TrimPrefix(uri, "sqlite://"))
	}
	return nil, fmt.Errorf("unsupported database uri scheme: %q", redactURI(uri))
}

func redactURI(uri string) string {
	if i := strings.Index(uri, "://"); i >= 0 {
		return uri[:i+3] + "..."
	}
	return "..."
}
