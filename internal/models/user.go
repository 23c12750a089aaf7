package models

import "time"

// User is the legacy identity root. A user may additionally hold one profile per
// organization; fields here are the source of truth for everything a profile inherits.
type User struct {
	ID               int64     `json:"id"`
	Username         *string   `json:"username"`
	Name             *string   `json:"name"`
	Email            string    `json:"email"`
	Bio              *string   `json:"bio"`
	Away             bool      `json:"away"`
	Verified         bool      `json:"verified"`
	AvatarURL        *string   `json:"avatar_url"`
	BrandColor       *string   `json:"brand_color"`
	DarkBrandColor   *string   `json:"dark_brand_color"`
	Theme            *string   `json:"theme"`
	StartTime        int       `json:"start_time"`
	EndTime          int       `json:"end_time"`
	BufferTime       int       `json:"buffer_time"`
	AllowSEOIndexing *bool     `json:"allow_seo_indexing"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UserWithProfile pairs a user with the profile it resolved through. For users
// outside any organization the profile is the synthesized personal one.
type UserWithProfile struct {
	User
	Profile UserProfile `json:"profile"`
}
