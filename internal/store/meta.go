package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mdkberry/migrating-to-aimms/internal/project"
)

// Canonical meta values for AIMMS 1.0 databases
const (
	MetaSchemaVersion = "1"
	MetaAppVersion    = "1.0"
)

// SeedMeta writes the canonical meta rows of a freshly-migrated database
func (s *Store) SeedMeta() error {
	now := project.UTCTimestamp()
	rows := map[string]string{
		"schema_version": MetaSchemaVersion,
		"app_version":    MetaAppVersion,
		"migration_date": now,
		"created_at":     now,
	}
	return s.Transaction(func(tx *sql.Tx) error {
		for key, value := range rows {
			if err := setMeta(tx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// CarryLegacyMeta copies legacy meta rows into the target, coercing the
// version keys to their canonical values and normalising date-like values
// to UTC. Keys seeded by SeedMeta keep their canonical values.
func (s *Store) CarryLegacyMeta(legacy map[string]string) error {
	return s.Transaction(func(tx *sql.Tx) error {
		for key, value := range legacy {
			switch key {
			case "schema_version":
				value = MetaSchemaVersion
			case "app_version":
				value = MetaAppVersion
			case "migration_date", "created_at":
				continue
			default:
				if strings.Contains(key, "date") {
					value = normalizeDate(value)
				}
			}
			if err := setMeta(tx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetMeta writes one meta row, replacing any existing value
func (s *Store) SetMeta(key, value string) error {
	return s.Transaction(func(tx *sql.Tx) error {
		return setMeta(tx, key, value)
	})
}

func setMeta(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// GetMeta reads one meta value; ok is false when the key is absent
func (s *Store) GetMeta(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get meta %s: %w", key, err)
	}
	return value, true, nil
}

// AllMeta returns the full meta table
func (s *Store) AllMeta() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM meta")
	if err != nil {
		return nil, fmt.Errorf("failed to query meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		meta[key] = value
	}
	return meta, rows.Err()
}

// normalizeDate re-renders recognisable timestamps in canonical UTC form.
// Unparseable values pass through unchanged; the validator flags them.
func normalizeDate(value string) string {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Format("2006-01-02T15:04:05Z")
		}
	}
	return value
}
