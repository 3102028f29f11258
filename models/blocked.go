package models

import "time"

// BlackoutWindow is an admin-declared interval [Start, End) during which nothing can be booked.
type BlackoutWindow struct {
	ID        string    `bson:"id" json:"id"`                         // Record identifier assigned by the store
	Start     time.Time `bson:"start" json:"start"`                   // Inclusive start instant (UTC)
	End       time.Time `bson:"end" json:"end"`                       // Exclusive end instant, strictly after Start
	Reason    string    `bson:"reason" json:"reason"`                 // Optional free-text reason (e.g., "holiday", "training")
	CreatedAt time.Time `bson:"createdAt" json:"createdAt,omitzero"` // Set by the store on insert
}

// Overlaps reports whether the window intersects [from, to).
func (b BlackoutWindow) Overlaps(from, to time.Time) bool {
	return b.Start.Before(to) && from.Before(b.End)
}

// BlackoutInput is the raw admin payload for a new window.
type BlackoutInput struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason"`
}

// BlackoutFilter narrows a listing. Zero values mean "unbounded".
type BlackoutFilter struct {
	OverlapsFrom time.Time // windows ending after this instant
	OverlapsTo   time.Time // windows starting before this instant
	EndedBefore  time.Time // windows whose End is at or before this instant
}
