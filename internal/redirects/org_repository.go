package redirects

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openmeet/backend/internal/models"
)

// OrgRedirectRepository looks up organization-migration redirects by slug list
// and redirect type.
type OrgRedirectRepository struct {
	pool  *pgxpool.Pool
	cache *Cache
}

// NewOrgRedirectRepository creates an org-redirect repository. cache may be nil.
func NewOrgRedirectRepository(pool *pgxpool.Pool, cache *Cache) *OrgRedirectRepository {
	return &OrgRedirectRepository{pool: pool, cache: cache}
}

// Lookup returns the enabled redirect rows of the given type for the slug set.
// Callers decide whether a partial match counts; this layer only fetches.
func (r *OrgRedirectRepository) Lookup(ctx context.Context, slugs []string, redirectType string) ([]models.OrgRedirect, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	sorted := append([]string(nil), slugs...)
	sort.Strings(sorted)
	key := "redirect:org:" + redirectType + ":" + strings.Join(sorted, "+")

	var cached []models.OrgRedirect
	if r.cache.get(ctx, key, &cached) {
		return cached, nil
	}

	const q = `SELECT id, from_slug, redirect_type, to_url, enabled, created_at
		FROM org_redirects
		WHERE from_slug = ANY($1) AND redirect_type = $2 AND enabled`
	rows, err := r.pool.Query(ctx, q, slugs, redirectType)
	if err != nil {
		return nil, fmt.Errorf("lookup org redirects: %w", err)
	}
	defer rows.Close()
	var list []models.OrgRedirect
	for rows.Next() {
		var or models.OrgRedirect
		if err := rows.Scan(&or.ID, &or.FromSlug, &or.RedirectType, &or.ToURL, &or.Enabled, &or.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, or)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.cache.set(ctx, key, list)
	return list, nil
}
