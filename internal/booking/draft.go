// Package booking implements the reservation workflow: intervention type and
// address selection, coverage check, slot choice, bike details and submission.
package booking

import "github.com/homecyclehelp/booking-client/internal/backend"

// Draft is the in-progress, unsubmitted booking. It lives only in memory,
// is built incrementally as the user progresses, and survives every failure
// so nothing has to be re-entered.
type Draft struct {
	InterventionTypeID int
	Address            string
	SlotID             int
	BikeBrand          string
	BikeModel          string
	IsElectric         bool
	Comment            string
	Photo              *backend.Photo
}
