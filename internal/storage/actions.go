package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lotas/tabdedupe/internal/types"
)

// ActionRecord is one executed plan in the action log.
type ActionRecord struct {
	ID          int64
	Operation   types.Operation
	Closed      int
	Moved       int
	Failed      int
	Destination int // 0 when the plan had no destination window
	CreatedAt   time.Time
}

// RecordAction appends an outcome to the action log. No-op outcomes are
// not recorded.
func RecordAction(db *sql.DB, out types.Outcome, destination int) error {
	if out.NoOp {
		return nil
	}
	var dest any
	if destination != 0 {
		dest = destination
	}
	_, err := db.Exec(
		"INSERT INTO action_log (operation, closed, moved, failed, destination) VALUES (?, ?, ?, ?, ?)",
		string(out.Operation), len(out.Closed), len(out.Moved), len(out.Failed), dest,
	)
	if err != nil {
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}

// ListActions returns the most recent actions first, at most limit rows.
func ListActions(db *sql.DB, limit int) ([]ActionRecord, error) {
	rows, err := db.Query(
		"SELECT id, operation, closed, moved, failed, destination, created_at FROM action_log ORDER BY created_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var result []ActionRecord
	for rows.Next() {
		var r ActionRecord
		var op string
		var dest sql.NullInt64
		if err := rows.Scan(&r.ID, &op, &r.Closed, &r.Moved, &r.Failed, &dest, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		r.Operation = types.Operation(op)
		if dest.Valid {
			r.Destination = int(dest.Int64)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return result, nil
}
