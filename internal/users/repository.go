package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openmeet/backend/internal/models"
	"github.com/openmeet/backend/internal/profiles"
)

// Repository handles user lookups for identity resolution.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a user repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, username, name, email, bio, away, verified, avatar_url, brand_color, dark_brand_color,
	theme, start_time, end_time, buffer_time, allow_seo_indexing, created_at, updated_at`

// GetByID returns a user by id, or (nil, nil) when absent.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// FindUsersByUsernames resolves a whole username list in a single query and pairs
// each user with its profile. With an organization slug the usernames are
// organization-scoped profile usernames; without one they are global usernames
// and each user gets its first organization profile, or the synthesized personal
// profile when no membership exists.
func (r *Repository) FindUsersByUsernames(ctx context.Context, usernames []string, orgSlug *string) ([]models.UserWithProfile, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	if orgSlug != nil {
		return r.findInOrg(ctx, usernames, *orgSlug)
	}
	return r.findGlobal(ctx, usernames)
}

func (r *Repository) findInOrg(ctx context.Context, usernames []string, orgSlug string) ([]models.UserWithProfile, error) {
	const q = `SELECT u.id, u.username, u.name, u.email, u.bio, u.away, u.verified, u.avatar_url,
			u.brand_color, u.dark_brand_color, u.theme, u.start_time, u.end_time, u.buffer_time,
			u.allow_seo_indexing, u.created_at, u.updated_at,
			p.id, p.uid, p.user_id, p.organization_id, p.username, p.moved_from_user_id, p.created_at, p.updated_at,
			o.id, o.slug, o.name, o.metadata, o.created_at, o.updated_at
		FROM profiles p
		INNER JOIN organizations o ON o.id = p.organization_id AND o.slug = $2
		INNER JOIN users u ON u.id = p.user_id
		WHERE p.username = ANY($1)`
	rows, err := r.pool.Query(ctx, q, usernames, orgSlug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserWithProfile
	for rows.Next() {
		var u models.User
		var p models.Profile
		var o models.Organization
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Name, &u.Email, &u.Bio, &u.Away, &u.Verified, &u.AvatarURL,
			&u.BrandColor, &u.DarkBrandColor, &u.Theme, &u.StartTime, &u.EndTime, &u.BufferTime,
			&u.AllowSEOIndexing, &u.CreatedAt, &u.UpdatedAt,
			&p.ID, &p.UID, &p.UserID, &p.OrganizationID, &p.Username, &p.MovedFromUserID, &p.CreatedAt, &p.UpdatedAt,
			&o.ID, &o.Slug, &o.Name, &o.Metadata, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		list = append(list, models.UserWithProfile{User: u, Profile: profiles.Enrich(&p, &o)})
	}
	return list, rows.Err()
}

func (r *Repository) findGlobal(ctx context.Context, usernames []string) ([]models.UserWithProfile, error) {
	// LATERAL picks each user's oldest membership so the whole list still
	// resolves in one round trip.
	const q = `SELECT u.id, u.username, u.name, u.email, u.bio, u.away, u.verified, u.avatar_url,
			u.brand_color, u.dark_brand_color, u.theme, u.start_time, u.end_time, u.buffer_time,
			u.allow_seo_indexing, u.created_at, u.updated_at,
			p.id, p.uid, p.user_id, p.organization_id, p.username, p.moved_from_user_id, p.created_at, p.updated_at,
			o.id, o.slug, o.name, o.metadata, o.created_at, o.updated_at
		FROM users u
		LEFT JOIN LATERAL (
			SELECT * FROM profiles WHERE user_id = u.id ORDER BY id ASC LIMIT 1
		) p ON TRUE
		LEFT JOIN organizations o ON o.id = p.organization_id
		WHERE u.username = ANY($1)`
	rows, err := r.pool.Query(ctx, q, usernames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserWithProfile
	for rows.Next() {
		var u models.User
		var p profileRow
		var o organizationRow
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Name, &u.Email, &u.Bio, &u.Away, &u.Verified, &u.AvatarURL,
			&u.BrandColor, &u.DarkBrandColor, &u.Theme, &u.StartTime, &u.EndTime, &u.BufferTime,
			&u.AllowSEOIndexing, &u.CreatedAt, &u.UpdatedAt,
			&p.ID, &p.UID, &p.UserID, &p.OrganizationID, &p.Username, &p.MovedFromUserID, &p.CreatedAt, &p.UpdatedAt,
			&o.ID, &o.Slug, &o.Name, &o.Metadata, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		profile := profiles.BuildPersonalProfile(u.ID, u.Username)
		if p.ID != nil {
			profile = profiles.Enrich(p.toProfile(), o.toOrganization())
		}
		list = append(list, models.UserWithProfile{User: u, Profile: profile})
	}
	return list, rows.Err()
}
