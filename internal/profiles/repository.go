package profiles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openmeet/backend/internal/models"
)

// ErrProfileExists is returned by Create when the (userId, organizationId) pair
// already has a profile.
var ErrProfileExists = errors.New("profile already exists for user in organization")

// Repository handles profile persistence. Every profile leaving it goes through
// Enrich, except the raw lookups documented as such.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a profile repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `id, uid, user_id, organization_id, username, moved_from_user_id, created_at, updated_at`

// CreateInput describes a profile to insert. A nil Username falls back to the
// local part of Email.
type CreateInput struct {
	UserID          int64   `json:"user_id"`
	OrganizationID  int64   `json:"organization_id"`
	Username        *string `json:"username"`
	Email           string  `json:"email"`
	MovedFromUserID *int64  `json:"moved_from_user_id"`
}

// UpsertInput inserts a profile if absent, else updates only the username.
// The key is (Create.UserID, Create.OrganizationID).
type UpsertInput struct {
	Create CreateInput `json:"create"`
	Update struct {
		Username *string `json:"username"`
		Email    string  `json:"email"`
	} `json:"update"`
}

// Create inserts a profile with a freshly generated uid.
func (r *Repository) Create(ctx context.Context, in CreateInput) (*models.Profile, error) {
	const q = `INSERT INTO profiles (uid, user_id, organization_id, username, moved_from_user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + profileColumns
	row := r.pool.QueryRow(ctx, q,
		GenerateProfileUID(), in.UserID, in.OrganizationID, DeriveUsername(in.Username, in.Email), in.MovedFromUserID)
	p, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrProfileExists
		}
		return nil, err
	}
	return p, nil
}

// Upsert inserts the profile if absent, otherwise updates only its username.
func (r *Repository) Upsert(ctx context.Context, in UpsertInput) (*models.Profile, error) {
	const q = `INSERT INTO profiles (uid, user_id, organization_id, username)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, organization_id)
		DO UPDATE SET username = $5, updated_at = NOW()
		RETURNING ` + profileColumns
	row := r.pool.QueryRow(ctx, q,
		GenerateProfileUID(), in.Create.UserID, in.Create.OrganizationID,
		DeriveUsername(in.Create.Username, in.Create.Email),
		DeriveUsername(in.Update.Username, in.Update.Email))
	return scanProfile(row)
}

// CreateManyUser is one entry of a bulk profile insert.
type CreateManyUser struct {
	ID       int64
	Username *string
	Email    string
}

// CreateMany inserts profiles for a batch of users joining one organization.
func (r *Repository) CreateMany(ctx context.Context, users []CreateManyUser, organizationID int64) error {
	if len(users) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	const q = `INSERT INTO profiles (uid, user_id, organization_id, username) VALUES ($1, $2, $3, $4)`
	for _, u := range users {
		batch.Queue(q, GenerateProfileUID(), u.ID, organizationID, DeriveUsername(u.Username, u.Email))
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

// Delete removes the profile binding a user to an organization. Absence of a
// matching row is not an error.
func (r *Repository) Delete(ctx context.Context, userID, organizationID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1 AND organization_id = $2`, userID, organizationID)
	return err
}

// DeleteMany removes all profiles of the given users. Idempotent.
func (r *Repository) DeleteMany(ctx context.Context, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE user_id = ANY($1)`, userIDs)
	return err
}

// Find returns the enriched profile with its organization and the organization's
// member profiles included. A nil or zero id returns (nil, nil).
func (r *Repository) Find(ctx context.Context, id *int64) (*models.UserProfile, error) {
	if id == nil || *id == 0 {
		return nil, nil
	}
	const q = `SELECT p.id, p.uid, p.user_id, p.organization_id, p.username, p.moved_from_user_id, p.created_at, p.updated_at,
			o.id, o.slug, o.name, o.metadata, o.created_at, o.updated_at
		FROM profiles p
		INNER JOIN organizations o ON o.id = p.organization_id
		WHERE p.id = $1`
	p, org, err := scanProfileWithOrg(r.pool.QueryRow(ctx, q, *id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	members, err := r.findRawForOrg(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	enriched := Enrich(p, org)
	enriched.Organization.Members = members
	return &enriched, nil
}

// FindByUpID resolves a unified profile identifier. The "usr-" form synthesizes a
// personal profile from the user row; the numeric form resolves the profile row
// and overlays the user-inherited fields either way.
func (r *Repository) FindByUpID(ctx context.Context, upID string) (*models.ProfileIdentity, error) {
	target, err := ParseUpID(upID)
	if err != nil {
		return nil, err
	}
	if target.Kind == LookupUser {
		user, err := r.getUserByID(ctx, target.ID)
		if err != nil || user == nil {
			return nil, err
		}
		identity := InheritFromUser(BuildPersonalProfile(user.ID, user.Username), user)
		return &identity, nil
	}
	profile, err := r.Find(ctx, &target.ID)
	if err != nil || profile == nil {
		return nil, err
	}
	user, err := r.getUserByID(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	identity := InheritFromUser(*profile, user)
	return &identity, nil
}

// FindByUserIDAndOrgID returns the enriched profile for the pair, or (nil, nil)
// when the organization id is nil or no profile exists.
func (r *Repository) FindByUserIDAndOrgID(ctx context.Context, userID int64, organizationID *int64) (*models.UserProfile, error) {
	if organizationID == nil {
		return nil, nil
	}
	const q = `SELECT p.id, p.uid, p.user_id, p.organization_id, p.username, p.moved_from_user_id, p.created_at, p.updated_at,
			o.id, o.slug, o.name, o.metadata, o.created_at, o.updated_at
		FROM profiles p
		INNER JOIN organizations o ON o.id = p.organization_id
		WHERE p.user_id = $1 AND p.organization_id = $2`
	p, org, err := scanProfileWithOrg(r.pool.QueryRow(ctx, q, userID, *organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	enriched := Enrich(p, org)
	return &enriched, nil
}

// FindByOrgIDAndUsername returns the raw profile row for an org-scoped username,
// or (nil, nil). Callers use it as an existence probe; it is not enriched.
func (r *Repository) FindByOrgIDAndUsername(ctx context.Context, organizationID int64, username string) (*models.Profile, error) {
	const q = `SELECT ` + profileColumns + ` FROM profiles WHERE organization_id = $1 AND username = $2`
	p, err := scanProfile(r.pool.QueryRow(ctx, q, organizationID, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// FindByUserIDAndProfileID returns the enriched profile when the given profile id
// belongs to the user, or (nil, nil).
func (r *Repository) FindByUserIDAndProfileID(ctx context.Context, userID, profileID int64) (*models.UserProfile, error) {
	const q = `SELECT p.id, p.uid, p.user_id, p.organization_id, p.username, p.moved_from_user_id, p.created_at, p.updated_at,
			o.id, o.slug, o.name, o.metadata, o.created_at, o.updated_at
		FROM profiles p
		INNER JOIN organizations o ON o.id = p.organization_id
		WHERE p.user_id = $1 AND p.id = $2`
	p, org, err := scanProfileWithOrg(r.pool.QueryRow(ctx, q, userID, profileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	enriched := Enrich(p, org)
	return &enriched, nil
}

// FindManyBySlugs is the bulk lookup used by the identity resolver: all profiles
// matching the org-scoped usernames, in one query.
func (r *Repository) FindManyBySlugs(ctx context.Context, usernames []string, orgSlug string) ([]models.UserProfile, error) {
	const q = `SELECT p.id, p.uid, p.user_id, p.organization_id, p.username, p.moved_from_user_id, p.created_at, p.updated_at,
			o.id, o.slug, o.name, o.metadata, o.created_at, o.updated_at
		FROM profiles p
		INNER JOIN organizations o ON o.id = p.organization_id
		WHERE p.username = ANY($1) AND o.slug = $2`
	return r.queryEnriched(ctx, q, usernames, orgSlug)
}

// FindManyForUser returns all organization memberships of a user, enriched.
func (r *Repository) FindManyForUser(ctx context.Context, userID int64) ([]models.UserProfile, error) {
	const q = `SELECT p.id, p.uid, p.user_id, p.organization_id, p.username, p.moved_from_user_id, p.created_at, p.updated_at,
			o.id, o.slug, o.name, o.metadata, o.created_at, o.updated_at
		FROM profiles p
		INNER JOIN organizations o ON o.id = p.organization_id
		WHERE p.user_id = $1
		ORDER BY p.id ASC`
	return r.queryEnriched(ctx, q, userID)
}

// FindAllProfilesForUserIncludingMovedUser never returns an empty slice for an
// existing user: with no memberships it synthesizes the personal profile.
func (r *Repository) FindAllProfilesForUserIncludingMovedUser(ctx context.Context, user *models.User) ([]models.UserProfile, error) {
	list, err := r.FindManyForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return []models.UserProfile{BuildPersonalProfile(user.ID, user.Username)}, nil
	}
	return list, nil
}

// FindManyForOrg returns all profiles of an organization, enriched.
func (r *Repository) FindManyForOrg(ctx context.Context, organizationID int64) ([]models.UserProfile, error) {
	const q = `SELECT p.id, p.uid, p.user_id, p.organization_id, p.username, p.moved_from_user_id, p.created_at, p.updated_at,
			o.id, o.slug, o.name, o.metadata, o.created_at, o.updated_at
		FROM profiles p
		INNER JOIN organizations o ON o.id = p.organization_id
		WHERE p.organization_id = $1
		ORDER BY p.id ASC`
	return r.queryEnriched(ctx, q, organizationID)
}

func (r *Repository) queryEnriched(ctx context.Context, q string, args ...any) ([]models.UserProfile, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserProfile
	for rows.Next() {
		p, org, err := scanProfileWithOrg(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, Enrich(p, org))
	}
	return list, rows.Err()
}

func (r *Repository) findRawForOrg(ctx context.Context, organizationID int64) ([]models.Profile, error) {
	const q = `SELECT ` + profileColumns + ` FROM profiles WHERE organization_id = $1 ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, q, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

func (r *Repository) getUserByID(ctx context.Context, id int64) (*models.User, error) {
	const q = `SELECT id, username, name, email, bio, away, verified, avatar_url, brand_color, dark_brand_color,
			theme, start_time, end_time, buffer_time, allow_seo_indexing, created_at, updated_at
		FROM users WHERE id = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&u.ID, &u.Username, &u.Name, &u.Email, &u.Bio, &u.Away, &u.Verified, &u.AvatarURL,
		&u.BrandColor, &u.DarkBrandColor, &u.Theme, &u.StartTime, &u.EndTime, &u.BufferTime,
		&u.AllowSEOIndexing, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.UID, &p.UserID, &p.OrganizationID, &p.Username, &p.MovedFromUserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProfileWithOrg(row pgx.Row) (*models.Profile, *models.Organization, error) {
	var p models.Profile
	var o models.Organization
	err := row.Scan(
		&p.ID, &p.UID, &p.UserID, &p.OrganizationID, &p.Username, &p.MovedFromUserID, &p.CreatedAt, &p.UpdatedAt,
		&o.ID, &o.Slug, &o.Name, &o.Metadata, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, nil, err
	}
	return &p, &o, nil
}
