package sqlite

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mmynk/rachadinha/internal/models"
)

// GetAppSettings reads the application-wide settings.
func (s *SQLiteStore) GetAppSettings(ctx context.Context) (*models.AppSettings, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM app_settings")
	if err != nil {
		return nil, fmt.Errorf("failed to get app settings: %w", err)
	}
	defer rows.Close()

	settings := &models.AppSettings{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan app setting: %w", err)
		}
		if key == models.SettingFlatFee {
			fee, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid %s setting %q: %w", key, value, err)
			}
			settings.FlatFee = fee
			settings.FlatFeeSet = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate app settings: %w", err)
	}

	return settings, nil
}

// SetFlatFee stores the flat per-participant fee.
func (s *SQLiteStore) SetFlatFee(ctx context.Context, fee float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO app_settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		models.SettingFlatFee, strconv.FormatFloat(fee, 'f', -1, 64),
	)
	if err != nil {
		return fmt.Errorf("failed to set flat fee: %w", err)
	}
	return nil
}
