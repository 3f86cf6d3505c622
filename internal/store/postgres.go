package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jules-12/card-creator-pro/internal/config"
)

// Postgres stores card sets in PostgreSQL, records as JSONB.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres creates a tuned pool, verifies it and applies the schema.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) CreateCardSet(ctx context.Context, set *CardSet) error {
	recs, err := encodeRecords(set.Records)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO card_sets (id, name, user_id, records, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6)
	`, set.ID, set.Name, set.UserID, string(recs), set.CreatedAt, set.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert card set: %w", err)
	}
	return nil
}

func (p *Postgres) ListCardSets(ctx context.Context, userID string) ([]CardSet, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, name, user_id, records, created_at, updated_at
		FROM card_sets
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list card sets: %w", err)
	}

	raw, err := pgx.CollectRows(rows, pgx.RowToStructByName[cardSetRow])
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

func (p *Postgres) GetCardSet(ctx context.Context, id string) (*CardSet, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, name, user_id, records, created_at, updated_at
		FROM card_sets
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get card set: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[cardSetRow])
	if errors.Is(err, pgx.ErrNoRows) {
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

func (p *Postgres) UpdateCardSet(ctx context.Context, set *CardSet) error {
	recs, err := encodeRecords(set.Records)
	if err != nil {
		return err
	}
	tag, err := p.pool.Exec(ctx, `
		UPDATE card_sets
		SET name = $2, records = $3::jsonb, updated_at = $4
		WHERE id = $1
	`, set.ID, set.Name, string(recs), set.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update card set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteCardSet(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM card_sets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete card set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CreateUser(ctx context.Context, u *User) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO users (id, email, full_name, password_hash, created_at)
		VALUES ($1, lower($2), $3, $4, $5)
	`, u.ID, u.Email, u.FullName, u.PasswordHash, u.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, email, full_name, password_hash, created_at
		FROM users
		WHERE email = lower($1)
	`, email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[User])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
