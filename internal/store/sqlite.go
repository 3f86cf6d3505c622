package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// SQLite stores card sets in a local database file, records as JSON text.
type SQLite struct {
	db *sqlx.DB
}

// OpenSQLite opens dsn ("file:cards.db", ":memory:") and applies the
// schema.
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serializes writers, and each connection to :memory: is a
	// separate database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) CreateCardSet(ctx context.Context, set *CardSet) error {
	recs, err := encodeRecords(set.Records)
	if err != nil {
		return err
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO card_sets (id, name, user_id, records, created_at, updated_at)
		VALUES (:id, :name, :user_id, :records, :created_at, :updated_at)
	`, cardSetRow{
		ID:        set.ID,
		Name:      set.Name,
		UserID:    set.UserID,
		Records:   recs,
		CreatedAt: set.CreatedAt.UTC(),
		UpdatedAt: set.UpdatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert card set: %w", err)
	}
	return nil
}

func (s *SQLite) ListCardSets(ctx context.Context, userID string) ([]CardSet, error) {
	var raw []cardSetRow
	err := s.db.SelectContext(ctx, &raw, `
		SELECT id, name, user_id, records, created_at, updated_at
		FROM card_sets
		WHERE user_id = ?
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list card sets: %w", err)
	}

	sets := make([]CardSet, 0, len(raw))
	for _, r := range raw {
		set, err := r.cardSet()
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func (s *SQLite) GetCardSet(ctx context.Context, id string) (*CardSet, error) {
	var row cardSetRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, user_id, records, created_at, updated_at
		FROM card_sets
		WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get card set: %w", err)
	}

	set, err := row.cardSet()
	if err != nil {
		return nil, err
	}
	return &set, nil
}

func (s *SQLite) UpdateCardSet(ctx context.Context, set *CardSet) error {
	recs, err := encodeRecords(set.Records)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE card_sets
		SET name = ?, records = ?, updated_at = ?
		WHERE id = ?
	`, set.Name, recs, set.UpdatedAt.UTC(), set.ID)
	if err != nil {
		return fmt.Errorf("update card set: %w", err)
	}
	return affectedOne(res)
}

func (s *SQLite) DeleteCardSet(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM card_sets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete card set: %w", err)
	}
	return affectedOne(res)
}

func (s *SQLite) CreateUser(ctx context.Context, u *User) error {
	row := *u
	row.Email = strings.ToLower(row.Email)
	row.CreatedAt = row.CreatedAt.UTC()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, full_name, password_hash, created_at)
		VALUES (:id, :email, :full_name, :password_hash, :created_at)
	`, row)

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `
		SELECT id, email, full_name, password_hash, created_at
		FROM users
		WHERE email = ?
	`, strings.ToLower(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
