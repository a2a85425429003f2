package storage

import (
	"database/sql"
	"fmt"

	"github.com/lotas/tabdedupe/internal/types"
)

// LoadReviewState reads the single review_state row.
func LoadReviewState(db *sql.DB) (types.ReviewState, error) {
	var st types.ReviewState
	var last sql.NullTime
	err := db.QueryRow(
		"SELECT successful_actions, last_prompt_at, dismissed, given, disabled FROM review_state WHERE id = 1",
	).Scan(&st.SuccessfulActions, &last, &st.Dismissed, &st.Given, &st.Disabled)
	if err != nil {
		return types.ReviewState{}, fmt.Errorf("load review state: %w", err)
	}
	if last.Valid {
		st.LastPromptAt = last.Time
	}
	return st, nil
}

// SaveReviewState overwrites the review_state row.
func SaveReviewState(db *sql.DB, st types.ReviewState) error {
	var last any
	if !st.LastPromptAt.IsZero() {
		last = st.LastPromptAt.UTC()
	}
	_, err := db.Exec(`INSERT INTO review_state (id, successful_actions, last_prompt_at, dismissed, given, disabled)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			successful_actions = excluded.successful_actions,
			last_prompt_at = excluded.last_prompt_at,
			dismissed = excluded.dismissed,
			given = excluded.given,
			disabled = excluded.disabled`,
		st.SuccessfulActions, last, st.Dismissed, st.Given, st.Disabled)
	if err != nil {
		return fmt.Errorf("save review state: %w", err)
	}
	return nil
}
