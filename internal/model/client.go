package model

import "time"

// Gender enumerates the `client.gender` enum column.
type Gender string

const (
	GenderFemale Gender = "FEMALE"
	GenderMale   Gender = "MALE"
)

// Valid reports whether g is a known gender value.
func (g Gender) Valid() bool {
	return g == GenderFemale || g == GenderMale
}

// Client is the CLIENT role profile row, created automatically when a
// client registration completes.
type Client struct {
	ID        uint64     `json:"id"`
	UserID    uint64     `json:"userId"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	Gender    Gender     `json:"gender,omitempty"`
	AvatarID  uint64     `json:"avatarId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	Avatar *PublicFile `json:"avatar,omitempty"`
}
