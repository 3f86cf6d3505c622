// Package store persists named card sets and registered users.
//
// Two backends implement Store: PostgreSQL through a pgx pool, and SQLite
// through sqlx for single-machine deployments. Records are kept as one JSON
// document per card set, which is how they are always read back.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jules-12/card-creator-pro/internal/config"
	"github.com/jules-12/card-creator-pro/internal/extract"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned by CreateUser for an existing email.
	ErrEmailTaken = errors.New("email already registered")
)

// CardSet is a named batch of records owned by one user.
type CardSet struct {
	ID        string                      `json:"id"`
	Name      string                      `json:"name"`
	UserID    string                      `json:"userId"`
	CreatedAt time.Time                   `json:"createdAt"`
	UpdatedAt time.Time                   `json:"updatedAt"`
	Records   []extract.ContributorRecord `json:"cards"`
}

// Record returns the record with the given ID.
func (s *CardSet) Record(id string) (extract.ContributorRecord, bool) {
	for _, r := range s.Records {
		if r.ID == id {
			return r, true
		}
	}
	return extract.ContributorRecord{}, false
}

// User is a registered account. Demo accounts are not stored.
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	FullName     string    `db:"full_name"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Store is the persistence boundary for card sets and users.
type Store interface {
	CreateCardSet(ctx context.Context, set *CardSet) error
	// ListCardSets returns the sets of userID, newest first.
	ListCardSets(ctx context.Context, userID string) ([]CardSet, error)
	GetCardSet(ctx context.Context, id string) (*CardSet, error)
	// UpdateCardSet overwrites name, records and update time.
	UpdateCardSet(ctx context.Context, set *CardSet) error
	DeleteCardSet(ctx context.Context, id string) error

	CreateUser(ctx context.Context, u *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	Ping(ctx context.Context) error
	Close() error
}

// Open connects to the database named by cfg.URL and applies the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	if cfg.IsPostgres() {
		return OpenPostgres(ctx, cfg)
	}
	return OpenSQLite(ctx, cfg.URL)
}

// cardSetRow is the storage shape shared by both backends.
type cardSetRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	UserID    string    `db:"user_id"`
	Records   []byte    `db:"records"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r cardSetRow) cardSet() (CardSet, error) {
	set := CardSet{
		ID:        r.ID,
		Name:      r.Name,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if err := json.Unmarshal(r.Records, &set.Records); err != nil {
		return CardSet{}, fmt.Errorf("decode records of card set %s: %w", r.ID, err)
	}
	if set.Records == nil {
		set.Records = []extract.ContributorRecord{}
	}
	return set, nil
}

func encodeRecords(recs []extract.ContributorRecord) ([]byte, error) {
	if recs == nil {
		recs = []extract.ContributorRecord{}
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return b, nil
}
