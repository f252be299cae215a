package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/viklib/backend/internal/models"
	"go.uber.org/zap"
)

// settingsRepository stores the single library settings row.
// The row uses a fixed primary key so there can never be more than one.
type settingsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSettingsRepository creates a new MySQL-backed settings repository
func NewSettingsRepository(db *sql.DB, logger *zap.Logger) *settingsRepository {
	return &settingsRepository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves the settings row. Defaults are returned when no row exists yet.
func (r *settingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	query := `
		SELECT library_name, max_borrow_days, max_books_per_user, late_fees_enabled,
			late_fee_per_day, email_notifications, reminder_days_before,
			allow_reservations, auto_renew_enabled, theme, updated_by, updated_at
		FROM settings
		WHERE id = 1
	`

	settings := &models.Settings{}
	var updatedBy sql.NullString
	err := r.db.QueryRowContext(ctx, query).Scan(
		&settings.LibraryName,
		&settings.MaxBorrowDays,
		&settings.MaxBooksPerUser,
		&settings.LateFeesEnabled,
		&settings.LateFeePerDay,
		&settings.EmailNotifications,
		&settings.ReminderDaysBefore,
		&settings.AllowReservations,
		&settings.AutoRenewEnabled,
		&settings.Theme,
		&updatedBy,
		&settings.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		r.logger.Error("failed to query settings", zap.Error(err))
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	settings.UpdatedBy = updatedBy.String
	return settings, nil
}

// Save upserts the settings row
func (r *settingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	settings.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	query := `
		INSERT INTO settings (id, library_name, max_borrow_days, max_books_per_user,
			late_fees_enabled, late_fee_per_day, email_notifications,
			reminder_days_before, allow_reservations, auto_renew_enabled, theme,
			updated_by, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			library_name = VALUES(library_name),
			max_borrow_days = VALUES(max_borrow_days),
			max_books_per_user = VALUES(max_books_per_user),
			late_fees_enabled = VALUES(late_fees_enabled),
			late_fee_per_day = VALUES(late_fee_per_day),
			email_notifications = VALUES(email_notifications),
			reminder_days_before = VALUES(reminder_days_before),
			allow_reservations = VALUES(allow_reservations),
			auto_renew_enabled = VALUES(auto_renew_enabled),
			theme = VALUES(theme),
			updated_by = VALUES(updated_by),
			updated_at = VALUES(updated_at)
	`

	_, err := r.db.ExecContext(ctx, query,
		settings.LibraryName,
		settings.MaxBorrowDays,
		settings.MaxBooksPerUser,
		settings.LateFeesEnabled,
		settings.LateFeePerDay,
		settings.EmailNotifications,
		settings.ReminderDaysBefore,
		settings.AllowReservations,
		settings.AutoRenewEnabled,
		settings.Theme,
		nullString(settings.UpdatedBy),
		settings.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to save settings", zap.Error(err))
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return nil
}
