package model

import "time"

// Rentor is the RENTOR role profile row, created automatically when a
// rentor registration completes. Complexes reference it as their owner.
type Rentor struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
