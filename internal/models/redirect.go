package models

import "time"

// RedirectType discriminates org-migration redirect rows.
const (
	RedirectTypeUser = "user"
	RedirectTypeTeam = "team"
)

// BookingRedirect marks a user as away for a date window, optionally forwarding
// visitors to another username. A row with a nil ToUsername only raises the
// out-of-office banner.
type BookingRedirect struct {
	ID           int64      `json:"id"`
	FromUsername string     `json:"from_username"`
	ToUsername   *string    `json:"to_username"`
	Enabled      bool       `json:"enabled"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	CreatedAt    time.Time  `json:"created_at"`
}

// OrgRedirect forwards a pre-migration username (or team slug) to its new home on
// an organization domain.
type OrgRedirect struct {
	ID           int64     `json:"id"`
	FromSlug     string    `json:"from_slug"`
	RedirectType string    `json:"redirect_type"`
	ToURL        string    `json:"to_url"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
}
