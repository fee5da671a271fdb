package validators

import (
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

// ValidateBookingDate rejects dates before today or past the horizon.
// Both date and today are calendar dates (see timezone.Date).
func ValidateBookingDate(date, today time.Time, horizonDays int) error {
	if date.IsZero() {
		return httperr.ErrValidation("date_required", "Booking date is required.")
	}
	if date.Before(today) {
		return httperr.ErrValidation("date_in_past", "Booking date is in the past.")
	}
	if date.After(today.AddDate(0, 0, horizonDays)) {
		return httperr.ErrValidation("date_too_far", "Booking date is too far ahead.")
	}
	return nil
}

// ParseTimeOfDay accepts HH:MM or HH:MM:SS and returns the stored HH:MM:SS form.
func ParseTimeOfDay(s string) (string, error) {
	for _, layout := range []string{"15:04", timezone.TimeLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(timezone.TimeLayout), nil
		}
	}
	return "", httperr.ErrValidation("invalid_time", "Invalid time, use HH:MM.")
}

// OnSlotGrid reports whether a canonical HH:MM:SS value starts a slot.
func OnSlotGrid(hms string, slotMinutes int) bool {
	t, err := time.Parse(timezone.TimeLayout, hms)
	if err != nil {
		return false
	}
	if slotMinutes <= 0 {
		return true
	}
	return t.Second() == 0 && (t.Hour()*60+t.Minute())%slotMinutes == 0
}
