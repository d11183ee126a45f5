package model

import "time"

// Complex mirrors the `complex` table: a property complex owned by a
// rentor, with an optional photo gallery in object storage.
//
// Fields:
//  ID          – primary key identifier.
//  RentorID    – owning rentor profile.
//  Name        – complex name, max 35 characters.
//  Region      – region, max 35 characters.
//  Location    – location, max 35 characters.
//  Address     – full postal address, max 254 characters.
//  Description – free-form description.
//  MainPhotoID – id of the photo shown first, 0 when unset.
type Complex struct {
	ID          uint64    `json:"id"`
	RentorID    uint64    `json:"rentorId"`
	Name        string    `json:"name"`
	Region      string    `json:"region"`
	Location    string    `json:"location"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	MainPhotoID uint64    `json:"mainPhotoId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Photos []PublicFile `json:"photos,omitempty"`
}
