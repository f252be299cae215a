package models

import (
	"fmt"
	"strings"
	"time"
)

// Theme represents the admin console color theme
type Theme string

// Theme constants
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

// Settings represents the single library-wide settings record
type Settings struct {
	LibraryName        string    `json:"libraryName" db:"library_name"`
	MaxBorrowDays      int       `json:"maxBorrowDays" db:"max_borrow_days"`
	MaxBooksPerUser    int       `json:"maxBooksPerUser" db:"max_books_per_user"`
	LateFeesEnabled    bool      `json:"lateFeesEnabled" db:"late_fees_enabled"`
	LateFeePerDay      float64   `json:"lateFeePerDay" db:"late_fee_per_day"`
	EmailNotifications bool      `json:"emailNotifications" db:"email_notifications"`
	ReminderDaysBefore int       `json:"reminderDaysBefore" db:"reminder_days_before"`
	AllowReservations  bool      `json:"allowReservations" db:"allow_reservations"`
	AutoRenewEnabled   bool      `json:"autoRenewEnabled" db:"auto_renew_enabled"`
	Theme              Theme     `json:"theme" db:"theme"`
	UpdatedBy          string    `json:"updatedBy,omitempty" db:"updated_by"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`
}

// DefaultSettings returns the settings used until an admin saves their own
func DefaultSettings() *Settings {
	return &Settings{
		LibraryName:        "VIKLIB",
		MaxBorrowDays:      14,
		MaxBooksPerUser:    5,
		LateFeesEnabled:    true,
		LateFeePerDay:      1.0,
		EmailNotifications: true,
		ReminderDaysBefore: 3,
		AllowReservations:  true,
		AutoRenewEnabled:   false,
		Theme:              ThemeLight,
	}
}

// Validate checks the settings value ranges
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.LibraryName) == "" {
		return fmt.Errorf("%w: library name is required", ErrValidation)
	}
	if len(s.LibraryName) > 100 {
		return fmt.Errorf("%w: library name cannot exceed 100 characters", ErrValidation)
	}
	if s.MaxBorrowDays < 1 || s.MaxBorrowDays > 90 {
		return fmt.Errorf("%w: max borrow days must be between 1 and 90", ErrValidation)
	}
	if s.MaxBooksPerUser < 1 || s.MaxBooksPerUser > 20 {
		return fmt.Errorf("%w: max books per user must be between 1 and 20", ErrValidation)
	}
	if s.LateFeePerDay < 0 {
		return fmt.Errorf("%w: late fee cannot be negative", ErrValidation)
	}
	if s.ReminderDaysBefore < 1 || s.ReminderDaysBefore > 7 {
		return fmt.Errorf("%w: reminder days must be between 1 and 7", ErrValidation)
	}
	switch s.Theme {
	case ThemeLight, ThemeDark, ThemeAuto:
	default:
		return fmt.Errorf("%w: invalid theme: %s", ErrValidation, s.Theme)
	}
	return nil
}
