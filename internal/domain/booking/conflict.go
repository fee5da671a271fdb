package booking

import (
	"fmt"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

const CodeTimeConflict = "time_conflict"

// SlotConflict is returned when the practitioner already has an occupying
// booking at the requested date and time.
func SlotConflict(bookingID uint, clientName string) error {
	return httperr.ErrConflictWith(
		CodeTimeConflict,
		fmt.Sprintf("Practitioner is already booked at this time. Client: %s", clientName),
		map[string]any{
			"booking_id":  bookingID,
			"client_name": clientName,
		},
	)
}
