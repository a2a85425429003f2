package storage

import (
	"context"
	"database/sql"

	"github.com/lotas/tabdedupe/internal/types"
)

// Store adapts a database handle to the interfaces the controller and the
// review tracker depend on.
type Store struct {
	DB *sql.DB
}

// NewStore wraps db.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) LoadPreferences(context.Context) (types.Preferences, error) {
	return LoadPreferences(s.DB)
}

func (s *Store) SavePreferences(_ context.Context, p types.Preferences) error {
	return SavePreferences(s.DB, p)
}

func (s *Store) LoadReviewState(context.Context) (types.ReviewState, error) {
	return LoadReviewState(s.DB)
}

func (s *Store) SaveReviewState(_ context.Context, st types.ReviewState) error {
	return SaveReviewState(s.DB, st)
}

func (s *Store) RecordAction(_ context.Context, out types.Outcome, destination int) error {
	return RecordAction(s.DB, out, destination)
}

func (s *Store) ListActions(_ context.Context, limit int) ([]ActionRecord, error) {
	return ListActions(s.DB, limit)
}
