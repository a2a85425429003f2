package storage

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/lotas/tabdedupe/internal/types"
)

const (
	prefMatchMode      = "matchMode"
	prefViewMode       = "viewMode"
	prefWindowOverview = "windowOverviewExpanded"
)

// LoadPreferences reads the stored preferences. Missing or invalid values
// fall back to their defaults individually. On a read error the defaults
// are returned together with the error.
func LoadPreferences(db *sql.DB) (types.Preferences, error) {
	prefs := types.DefaultPreferences()

	rows, err := db.Query("SELECT key, value FROM preferences")
	if err != nil {
		return prefs, fmt.Errorf("query preferences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return types.DefaultPreferences(), fmt.Errorf("scan preference: %w", err)
		}
		switch key {
		case prefMatchMode:
			if m, err := types.ParseMatchMode(value); err == nil {
				prefs.MatchMode = m
			}
		case prefViewMode:
			if v, err := types.ParseViewMode(value); err == nil {
				prefs.ViewMode = v
			}
		case prefWindowOverview:
			if b, err := strconv.ParseBool(value); err == nil {
				prefs.WindowOverviewExpanded = b
			}
		}
	}
	if err := rows.Err(); err != nil {
		return types.DefaultPreferences(), fmt.Errorf("iterate preferences: %w", err)
	}
	return prefs, nil
}

// SavePreferences writes all three preference fields in one transaction.
func SavePreferences(db *sql.DB, prefs types.Preferences) error {
	if _, err := types.ParseMatchMode(string(prefs.MatchMode)); err != nil {
		return err
	}
	if _, err := types.ParseViewMode(string(prefs.ViewMode)); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	values := [][2]string{
		{prefMatchMode, string(prefs.MatchMode)},
		{prefViewMode, string(prefs.ViewMode)},
		{prefWindowOverview, strconv.FormatBool(prefs.WindowOverviewExpanded)},
	}
	for _, kv := range values {
		_, err := tx.Exec(`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
			kv[0], kv[1])
		if err != nil {
			return fmt.Errorf("save preference %s: %w", kv[0], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
