// Package redirects implements the two redirect-lookup collaborators consulted
// before a booking page resolves: per-user away/forwarding entries and
// organization-migration redirects.
package redirects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRedirect is the outcome of a per-user redirect lookup. OutOfOffice is set
// when an active entry has no forwarding target; ToUsername is set when visitors
// should be forwarded.
type UserRedirect struct {
	OutOfOffice bool    `json:"out_of_office"`
	ToUsername  *string `json:"to_username"`
}

// UserRedirectRepository looks up active booking redirects by username.
type UserRedirectRepository struct {
	pool  *pgxpool.Pool
	cache *Cache
}

// NewUserRedirectRepository creates a user-redirect repository. cache may be nil.
func NewUserRedirectRepository(pool *pgxpool.Pool, cache *Cache) *UserRedirectRepository {
	return &UserRedirectRepository{pool: pool, cache: cache}
}

type cachedUserRedirect struct {
	Found    bool         `json:"found"`
	Redirect UserRedirect `json:"redirect"`
}

// Lookup returns the active redirect entry for a username at the given time, or
// (nil, nil) when none is in effect.
func (r *UserRedirectRepository) Lookup(ctx context.Context, username string, now time.Time) (*UserRedirect, error) {
	day := now.UTC().Format("2006-01-02")
	key := "redirect:user:" + username + ":" + day

	var cached cachedUserRedirect
	if r.cache.get(ctx, key, &cached) {
		if !cached.Found {
			return nil, nil
		}
		res := cached.Redirect
		return &res, nil
	}

	const q = `SELECT to_username FROM booking_redirects
		WHERE from_username = $1 AND enabled
			AND (start_date IS NULL OR start_date <= $2::date)
			AND (end_date IS NULL OR end_date >= $2::date)
		ORDER BY id DESC
		LIMIT 1`
	var toUsername *string
	err := r.pool.QueryRow(ctx, q, username, day).Scan(&toUsername)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.cache.set(ctx, key, cachedUserRedirect{})
			return nil, nil
		}
		return nil, fmt.Errorf("lookup booking redirect for %q: %w", username, err)
	}

	res := &UserRedirect{OutOfOffice: toUsername == nil, ToUsername: toUsername}
	r.cache.set(ctx, key, cachedUserRedirect{Found: true, Redirect: *res})
	return res, nil
}
