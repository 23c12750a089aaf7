package models

import (
	"encoding/json"
	"time"
)

// Organization represents a tenant. A nil Slug means the organization has not
// published yet; its members' booking pages render a placeholder.
type Organization struct {
	ID        int64           `json:"id"`
	Slug      *string         `json:"slug"`
	Name      string          `json:"name"`
	Metadata  json.RawMessage `json:"metadata"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OrganizationMetadata is the structured part of the organization metadata blob.
// RequestedSlug is the slug asked for during onboarding, before one is finalized.
type OrganizationMetadata struct {
	RequestedSlug *string `json:"requestedSlug,omitempty"`
	IsPlatform    *bool   `json:"isPlatform,omitempty"`
}

// ParsedOrganization is an organization with its metadata deserialized and
// RequestedSlug projected out for convenience. Produced only by profile enrichment.
type ParsedOrganization struct {
	ID            int64                `json:"id"`
	Slug          *string              `json:"slug"`
	Name          string               `json:"name"`
	RequestedSlug *string              `json:"requested_slug"`
	Metadata      OrganizationMetadata `json:"metadata"`
	// Members carries the organization's profile rows when a lookup asked for
	// them (profiles.Repository.Find); nil otherwise.
	Members []Profile `json:"members,omitempty"`
}

// ParseOrganization deserializes the metadata blob and projects RequestedSlug.
// A nil or invalid blob yields empty metadata rather than an error; the blob is
// operator-written and must not take identity resolution down with it.
func ParseOrganization(org *Organization) *ParsedOrganization {
	if org == nil {
		return nil
	}
	var meta OrganizationMetadata
	if len(org.Metadata) > 0 {
		_ = json.Unmarshal(org.Metadata, &meta)
	}
	return &ParsedOrganization{
		ID:            org.ID,
		Slug:          org.Slug,
		Name:          org.Name,
		RequestedSlug: meta.RequestedSlug,
		Metadata:      meta,
	}
}
