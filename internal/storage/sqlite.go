package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements UserStore with SQLite, for local development and
// single-instance deployments.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the database at dbPath and creates the
// schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Configure SQLite with WAL mode and busy timeout for better concurrency
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would get its own empty in-memory database
		db.SetMaxOpenConns(1)
	}

	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		log.Debug().Err(err).Str("dbPath", dbPath).Msg("could not restrict database permissions")
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	usersQuery := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		username TEXT NOT NULL DEFAULT '',
		language_code TEXT NOT NULL DEFAULT '',
		is_premium INTEGER NOT NULL DEFAULT 0,
		user_image TEXT NOT NULL DEFAULT '',
		balance INTEGER NOT NULL DEFAULT 0,
		referred_by TEXT NOT NULL DEFAULT '',
		level INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(usersQuery); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	favoritesQuery := `
	CREATE TABLE IF NOT EXISTS favorites (
		user_id TEXT NOT NULL,
		listing_id TEXT NOT NULL,
		added_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, listing_id),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_favorites_listing ON favorites(listing_id);
	`
	if _, err := s.db.Exec(favoritesQuery); err != nil {
		return fmt.Errorf("failed to create favorites table: %w", err)
	}

	referralsQuery := `
	CREATE TABLE IF NOT EXISTS referrals (
		referrer_id TEXT NOT NULL,
		referred_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (referrer_id, referred_id),
		FOREIGN KEY (referrer_id) REFERENCES users(id) ON DELETE CASCADE
	);
	`
	if _, err := s.db.Exec(referralsQuery); err != nil {
		return fmt.Errorf("failed to create referrals table: %w", err)
	}

	// Enable foreign keys for cascade delete
	if _, err := s.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return nil
}

// Init only checks the connection; the schema is created on open.
func (s *SQLiteStore) Init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Initialized() bool {
	return true
}

// GetUser retrieves a user with favorites and referrals.
// Returns nil, nil if the user doesn't exist.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getUser(ctx, id)
}

func (s *SQLiteStore) getUser(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, username, language_code, is_premium, user_image,
			balance, referred_by, level, created_at, updated_at
		FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if user.Favorites, err = s.favorites(ctx, id); err != nil {
		return nil, err
	}
	if user.Referrals, err = s.referrals(ctx, id); err != nil {
		return nil, err
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	var premium int
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.LanguageCode, &premium,
		&u.UserImage, &u.Balance, &u.ReferredBy, &u.Level, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.IsPremium = premium != 0
	return &u, nil
}

func (s *SQLiteStore) favorites(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT listing_id FROM favorites WHERE user_id = ? ORDER BY added_at, rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	favorites := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, id)
	}
	return favorites, rows.Err()
}

func (s *SQLiteStore) referrals(ctx context.Context, referrerID string) (map[string]Referral, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT referred_id, amount, created_at FROM referrals WHERE referrer_id = ?`, referrerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query referrals: %w", err)
	}
	defer rows.Close()

	var referrals map[string]Referral
	for rows.Next() {
		var id string
		var r Referral
		if err := rows.Scan(&id, &r.Amount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan referral: %w", err)
		}
		if referrals == nil {
			referrals = make(map[string]Referral)
		}
		referrals[id] = r
	}
	return referrals, rows.Err()
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, first_name, last_name, username, language_code, is_premium,
			user_image, balance, referred_by, level, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		user.ID, user.FirstName, user.LastName, user.Username, user.LanguageCode,
		boolToInt(user.IsPremium), user.UserImage, user.Balance, user.ReferredBy, user.Level,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to create user: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	for _, listingID := range user.Favorites {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO favorites (user_id, listing_id, added_at) VALUES (?, ?, ?)`,
			user.ID, listingID, user.CreatedAt); err != nil {
			return false, fmt.Errorf("failed to add favorite: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit user: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) AddFavorite(ctx context.Context, userID, listingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Upsert: favorites may be added before /start created the record
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, created_at, updated_at) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		userID, now, now); err != nil {
		return false, fmt.Errorf("failed to upsert user: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO favorites (user_id, listing_id, added_at) VALUES (?, ?, ?)`,
		userID, listingID, now)
	if err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}
	added, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}

	if added > 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE users SET updated_at = ? WHERE id = ?`, now, userID); err != nil {
			return false, fmt.Errorf("failed to touch user: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit favorite: %w", err)
	}
	return added > 0, nil
}

func (s *SQLiteStore) RemoveFavorite(ctx context.Context, userID, listingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND listing_id = ?`, userID, listingID)
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	if removed > 0 {
		if _, err := s.db.ExecContext(ctx, `UPDATE users SET updated_at = ? WHERE id = ?`,
			time.Now().UTC(), userID); err != nil {
			return false, fmt.Errorf("failed to touch user: %w", err)
		}
	}
	return removed > 0, nil
}

func (s *SQLiteStore) SetUserImage(ctx context.Context, userID, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET user_image = ?, updated_at = ? WHERE id = ?`,
		imageURL, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update user image: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ApplyReferral(ctx context.Context, referrerID, referredID string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET balance = balance + ?, updated_at = ? WHERE id = ?`,
		amount, now, referrerID)
	if err != nil {
		return fmt.Errorf("failed to credit referrer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO referrals (referrer_id, referred_id, amount, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(referrer_id, referred_id) DO UPDATE SET
			amount = excluded.amount,
			created_at = excluded.created_at`,
		referrerID, referredID, amount, now); err != nil {
		return fmt.Errorf("failed to record referral: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit referral: %w", err)
	}
	return nil
}

// EachUser loads ids up front so fn may call back into the store.
func (s *SQLiteStore) EachUser(ctx context.Context, fn func(*User) error) error {
	ids, err := s.userIDs(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		user, err := s.GetUser(ctx, id)
		if err != nil {
			return err
		}
		if user == nil {
			continue
		}
		if err := fn(user); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) userIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
