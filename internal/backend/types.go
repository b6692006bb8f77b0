// Package backend contains the REST client for the intervention booking API:
// intervention types, zone coverage, slot availability and reservation.
package backend

import (
	"encoding/json"
	"fmt"
	"time"
)

// InterventionType is one bookable kind of intervention. Loaded once at
// workflow start and immutable for the session.
type InterventionType struct {
	ID            int     `json:"id"`
	Name          string  `json:"nom"`
	StartingPrice float64 `json:"prix_depart"`
}

// CoverageResult is the business answer to a zone lookup. ProviderID is the
// technician assigned to the coordinate and is only meaningful when Covered
// is true.
type CoverageResult struct {
	Covered    bool `json:"covered"`
	ProviderID int  `json:"technicien_id"`
}

// Slot is one bookable time window for a provider.
type Slot struct {
	ID    int       `json:"id"`
	Start time.Time `json:"debut"`
}

// slotTimeLayouts lists the timestamp shapes the backend has been seen to
// emit for "debut". The offset is preserved as received so day grouping
// never shifts a slot across midnight.
var slotTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05",
}

// UnmarshalJSON decodes a slot, accepting timestamps with or without seconds.
func (s *Slot) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    int    `json:"id"`
		Debut string `json:"debut"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var start time.Time
	var err error
	for _, layout := range slotTimeLayouts {
		start, err = time.Parse(layout, raw.Debut)
		if err == nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("slot %d: unparseable start %q", raw.ID, raw.Debut)
	}

	s.ID = raw.ID
	s.Start = start
	return nil
}

// BookingRequest carries the multipart fields of a reservation. The slot
// identifier travels in the resource path, not here.
type BookingRequest struct {
	ClientID   int
	BikeBrand  string
	BikeModel  string
	IsElectric bool
	Comment    string
	Address    string
	Photo      *Photo
}

// Photo is an optional image attachment, already validated by the caller.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}
