package core

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/jules-12/card-creator-pro/internal/extract"
	"github.com/jules-12/card-creator-pro/internal/logging"
	"github.com/jules-12/card-creator-pro/internal/store"
)

// CardSetUpdate changes a card set. Nil fields are left unchanged.
type CardSetUpdate struct {
	Name    *string                      `json:"name"`
	Records *[]extract.ContributorRecord `json:"cards"`
}

// CreateCardSet saves records under name for the current user.
func (s *Service) CreateCardSet(ctx context.Context, name string, recs []extract.ContributorRecord) (*store.CardSet, error) {
	u, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	now := s.now().UTC()
	set := &store.CardSet{
		ID:        uuid.NewString(),
		Name:      name,
		UserID:    u.ID,
		CreatedAt: now,
		UpdatedAt: now,
		Records:   normalizeRecords(recs),
	}
	if err := s.store.CreateCardSet(ctx, set); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("card set created",
		"card_set_id", set.ID,
		"cards", len(set.Records),
	)
	return set, nil
}

// ListCardSets returns the current user's card sets, newest first.
func (s *Service) ListCardSets(ctx context.Context) ([]store.CardSet, error) {
	u, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	sets, err := s.store.ListCardSets(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if sets == nil {
		sets = []store.CardSet{}
	}
	return sets, nil
}

// GetCardSet returns a card set of the current user.
func (s *Service) GetCardSet(ctx context.Context, id string) (*store.CardSet, error) {
	u, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	set, err := s.store.GetCardSet(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCardSetNotFound
	}
	if err != nil {
		return nil, err
	}
	if set.UserID != u.ID {
		return nil, ErrCardSetNotFound
	}
	return set, nil
}

// UpdateCardSet renames a card set and/or replaces its records.
func (s *Service) UpdateCardSet(ctx context.Context, id string, upd CardSetUpdate) (*store.CardSet, error) {
	set, err := s.GetCardSet(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		set.Name = name
	}
	if upd.Records != nil {
		set.Records = normalizeRecords(*upd.Records)
	}
	set.UpdatedAt = s.now().UTC()

	err = s.store.UpdateCardSet(ctx, set)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCardSetNotFound
	}
	if err != nil {
		return nil, err
	}
	return set, nil
}

// DeleteCardSet removes a card set of the current user.
func (s *Service) DeleteCardSet(ctx context.Context, id string) error {
	if _, err := s.GetCardSet(ctx, id); err != nil {
		return err
	}
	err := s.store.DeleteCardSet(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCardSetNotFound
	}
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("card set deleted", "card_set_id", id)
	return nil
}

// normalizeRecords gives every record an ID and fills blank fields.
func normalizeRecords(recs []extract.ContributorRecord) []extract.ContributorRecord {
	out := make([]extract.ContributorRecord, len(recs))
	for i, r := range recs {
		if strings.TrimSpace(r.ID) == "" {
			r.ID = "contrib-" + uuid.NewString()
		}
		r.Fill()
		out[i] = r
	}
	return out
}
