package models

import "time"

// Profile binds a user to an organization with an organization-scoped username.
// At most one profile exists per (UserID, OrganizationID) pair. UID is an opaque
// generated identifier that survives re-numbering; callers never parse it.
type Profile struct {
	ID              int64     `json:"id"`
	UID             string    `json:"uid"`
	UserID          int64     `json:"user_id"`
	OrganizationID  int64     `json:"organization_id"`
	Username        string    `json:"username"`
	MovedFromUserID *int64    `json:"moved_from_user_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UserProfile is the enriched profile shape every caller consumes. For a user with
// no organization membership it is synthesized from the user row: ID is nil,
// UpID is "usr-<userId>" and Organization is nil. For a real profile row UpID is the
// row id as a string and timestamps are RFC3339 strings.
type UserProfile struct {
	ID              *int64              `json:"id"`
	UID             string              `json:"uid,omitempty"`
	UpID            string              `json:"up_id"`
	UserID          int64               `json:"user_id"`
	Username        *string             `json:"username"`
	OrganizationID  *int64              `json:"organization_id"`
	Organization    *ParsedOrganization `json:"organization"`
	MovedFromUserID *int64              `json:"moved_from_user_id,omitempty"`
	CreatedAt       string              `json:"created_at,omitempty"`
	UpdatedAt       string              `json:"updated_at,omitempty"`
}

// ProfileIdentity is a UserProfile overlaid with the fields a profile always
// inherits from its user row. These never come from the profile table, even when
// both records exist; Profile does not duplicate them.
type ProfileIdentity struct {
	UserProfile
	Name       *string `json:"name"`
	AvatarURL  *string `json:"avatar_url"`
	StartTime  int     `json:"start_time"`
	EndTime    int     `json:"end_time"`
	BufferTime int     `json:"buffer_time"`
}
