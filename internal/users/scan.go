package users

import (
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/openmeet/backend/internal/models"
)

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Name, &u.Email, &u.Bio, &u.Away, &u.Verified, &u.AvatarURL,
		&u.BrandColor, &u.DarkBrandColor, &u.Theme, &u.StartTime, &u.EndTime, &u.BufferTime,
		&u.AllowSEOIndexing, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// profileRow holds a LEFT-JOINed profile; every column is nullable.
type profileRow struct {
	ID              *int64
	UID             *string
	UserID          *int64
	OrganizationID  *int64
	Username        *string
	MovedFromUserID *int64
	CreatedAt       *time.Time
	UpdatedAt       *time.Time
}

func (p profileRow) toProfile() *models.Profile {
	return &models.Profile{
		ID:              *p.ID,
		UID:             *p.UID,
		UserID:          *p.UserID,
		OrganizationID:  *p.OrganizationID,
		Username:        *p.Username,
		MovedFromUserID: p.MovedFromUserID,
		CreatedAt:       *p.CreatedAt,
		UpdatedAt:       *p.UpdatedAt,
	}
}

// organizationRow holds a LEFT-JOINed organization; every column is nullable.
type organizationRow struct {
	ID        *int64
	Slug      *string
	Name      *string
	Metadata  json.RawMessage
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

func (o organizationRow) toOrganization() *models.Organization {
	if o.ID == nil {
		return nil
	}
	org := &models.Organization{
		ID:       *o.ID,
		Slug:     o.Slug,
		Metadata: o.Metadata,
	}
	if o.Name != nil {
		org.Name = *o.Name
	}
	if o.CreatedAt != nil {
		org.CreatedAt = *o.CreatedAt
	}
	if o.UpdatedAt != nil {
		org.UpdatedAt = *o.UpdatedAt
	}
	return org
}
