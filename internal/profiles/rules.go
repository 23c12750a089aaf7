package profiles

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openmeet/backend/internal/models"
)

// LookupKind says which table an up_id resolves through.
type LookupKind int

const (
	// LookupUser means a "usr-<userId>" identifier rooted in the users table.
	LookupUser LookupKind = iota
	// LookupProfile means a numeric profile row id.
	LookupProfile
)

// LookupTarget is the parsed form of an up_id.
type LookupTarget struct {
	Kind LookupKind
	ID   int64
}

// ParseUpID parses a unified profile identifier: either "usr-<userId>" for a user
// without an organization profile, or a profile row id in decimal.
func ParseUpID(upID string) (LookupTarget, error) {
	if rest, ok := strings.CutPrefix(upID, "usr-"); ok {
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return LookupTarget{}, fmt.Errorf("invalid user up_id %q", upID)
		}
		return LookupTarget{Kind: LookupUser, ID: id}, nil
	}
	id, err := strconv.ParseInt(upID, 10, 64)
	if err != nil {
		return LookupTarget{}, fmt.Errorf("invalid up_id %q", upID)
	}
	return LookupTarget{Kind: LookupProfile, ID: id}, nil
}

// GenerateProfileUID produces the durable opaque identifier stored on a profile.
// Callers treat it as an opaque string; it is independent of the numeric row id.
func GenerateProfileUID() string {
	return uuid.NewString()
}

// DeriveUsername applies the username fallback rule: when no username is given,
// the local part of the email (before "@") is used.
func DeriveUsername(username *string, email string) string {
	if username != nil && *username != "" {
		return *username
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}

// BuildPersonalProfile synthesizes the non-organization identity of a user. It is
// the only UserProfile whose ID is nil; its UpID is "usr-<userId>".
func BuildPersonalProfile(userID int64, username *string) models.UserProfile {
	return models.UserProfile{
		ID:             nil,
		UpID:           fmt.Sprintf("usr-%d", userID),
		UserID:         userID,
		Username:       username,
		OrganizationID: nil,
		Organization:   nil,
	}
}

// Enrich converts a raw profile row plus its organization into the canonical
// UserProfile shape. It is the single choke point producing up_id, the parsed
// organization and RFC3339 timestamp strings; no caller builds these itself.
func Enrich(p *models.Profile, org *models.Organization) models.UserProfile {
	id := p.ID
	orgID := p.OrganizationID
	username := p.Username
	return models.UserProfile{
		ID:              &id,
		UID:             p.UID,
		UpID:            strconv.FormatInt(p.ID, 10),
		UserID:          p.UserID,
		Username:        &username,
		OrganizationID:  &orgID,
		Organization:    models.ParseOrganization(org),
		MovedFromUserID: p.MovedFromUserID,
		CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// InheritFromUser overlays the fields a profile never stores itself. They always
// come from the user row, even when a profile row exists.
func InheritFromUser(profile models.UserProfile, user *models.User) models.ProfileIdentity {
	return models.ProfileIdentity{
		UserProfile: profile,
		Name:        user.Name,
		AvatarURL:   user.AvatarURL,
		StartTime:   user.StartTime,
		EndTime:     user.EndTime,
		BufferTime:  user.BufferTime,
	}
}
