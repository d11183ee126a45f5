package model

import "time"

// PublicFile mirrors the `public_file` table: one uploaded object in
// storage. A file belongs to at most one owner, either a client avatar
// (ClientID) or a complex photo (ComplexID).
type PublicFile struct {
	ID        uint64    `json:"id"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	ClientID  uint64    `json:"-"`
	ComplexID uint64    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
