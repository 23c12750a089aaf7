package booking

import (
	"encoding/json"

	"github.com/openmeet/backend/internal/models"
)

// PageProfile is the display identity of the page owner after fallbacks are
// applied: name falls back to username then empty string, brand colors and SEO
// indexing fall back to system defaults.
type PageProfile struct {
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Username         *string                    `json:"username"`
	Theme            *string                    `json:"theme"`
	BrandColor       string                     `json:"brand_color"`
	DarkBrandColor   string                     `json:"dark_brand_color"`
	AvatarURL        *string                    `json:"avatar_url"`
	AllowSEOIndexing bool                       `json:"allow_seo_indexing"`
	Organization     *models.ParsedOrganization `json:"organization"`
}

// PageUser is the per-user slice of page data.
type PageUser struct {
	Name      *string            `json:"name"`
	Username  *string            `json:"username"`
	Bio       *string            `json:"bio"`
	AvatarURL *string            `json:"avatar_url"`
	Away      bool               `json:"away"`
	Verified  bool               `json:"verified"`
	Profile   models.UserProfile `json:"profile"`
}

// PageEventType is a visible event type with validated metadata and a sanitized
// description.
type PageEventType struct {
	ID                    int64                     `json:"id"`
	Title                 string                    `json:"title"`
	Slug                  string                    `json:"slug"`
	Length                int                       `json:"length"`
	Hidden                bool                      `json:"hidden"`
	Position              int                       `json:"position"`
	RequiresConfirmation  bool                      `json:"requires_confirmation"`
	Price                 int                       `json:"price"`
	Currency              string                    `json:"currency"`
	RecurringEvent        json.RawMessage           `json:"recurring_event"`
	Metadata              *models.EventTypeMetadata `json:"metadata"`
	DescriptionAsSafeHTML string                    `json:"description_as_safe_html"`
}

// Entity describes the page's owning organization for placeholder rendering.
// IsUnpublished is true only when an organization exists and its slug is NULL;
// a user without any organization is never "unpublished".
type Entity struct {
	IsUnpublished bool    `json:"is_unpublished"`
	OrgSlug       *string `json:"org_slug"`
	Name          *string `json:"name"`
}

// PageData is everything the booking page renders.
type PageData struct {
	Users               []PageUser      `json:"users"`
	Profile             PageProfile     `json:"profile"`
	EventTypes          []PageEventType `json:"event_types"`
	SafeBio             string          `json:"safe_bio"`
	MarkdownStrippedBio string          `json:"markdown_stripped_bio"`
	Entity              Entity          `json:"entity"`
	ThemeBasis          *string         `json:"theme_basis"`
}
