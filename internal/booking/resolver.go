// Package booking resolves public booking-page requests: a username (or list of
// usernames) plus the request's host and query decide between serving page data,
// issuing a redirect, or reporting not-found.
package booking

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openmeet/backend/config"
	"github.com/openmeet/backend/internal/eventtypes"
	"github.com/openmeet/backend/internal/markdown"
	"github.com/openmeet/backend/internal/models"
	"github.com/openmeet/backend/internal/orgdomain"
	"github.com/openmeet/backend/internal/redirects"
)

// UserSource resolves a whole username list to users with profiles in one query.
type UserSource interface {
	FindUsersByUsernames(ctx context.Context, usernames []string, orgSlug *string) ([]models.UserWithProfile, error)
}

// EventTypeSource fetches a user's personal event types in display order.
type EventTypeSource interface {
	FindPersonalByUserID(ctx context.Context, userID int64) ([]models.EventType, error)
}

// UserRedirectLookup checks away/forwarding entries for a single username.
type UserRedirectLookup interface {
	Lookup(ctx context.Context, username string, now time.Time) (*redirects.UserRedirect, error)
}

// OrgRedirectLookup fetches org-migration redirect rows for a slug list.
type OrgRedirectLookup interface {
	Lookup(ctx context.Context, slugs []string, redirectType string) ([]models.OrgRedirect, error)
}

// Request carries the raw inputs of one page resolution.
type Request struct {
	// UsernameParam is the raw path segment, possibly naming several users
	// ("alice+bob").
	UsernameParam string
	// Host is the request host, used for organization-domain detection.
	Host string
	// OrgSlugParam is an explicit org slug from a rewrite or query parameter.
	OrgSlugParam string
	// Query is the full request query string.
	Query url.Values
}

// OutcomeKind tags the terminal result of a resolution.
type OutcomeKind int

const (
	// OutcomePage means the booking page renders with Outcome.Page.
	OutcomePage OutcomeKind = iota
	// OutcomeRedirect means the request terminates in a non-permanent redirect.
	OutcomeRedirect
	// OutcomeNotFound means no resolvable identity exists for this request.
	OutcomeNotFound
)

// Redirect is a terminal redirect destination. Permanent is always false today;
// every redirect source here (away forwarding, org migration, dynamic groups,
// single offering) may be reverted by its owner.
type Redirect struct {
	Destination string
	Permanent   bool
}

// Outcome is the tagged result of a resolution.
type Outcome struct {
	Kind     OutcomeKind
	Redirect *Redirect
	Page     *PageData
	// FetchTime spans the repository fetches, for the diagnostic header.
	FetchTime time.Duration
}

// Resolver implements the booking-page decision table.
type Resolver struct {
	users        UserSource
	eventTypes   EventTypeSource
	userRedirect UserRedirectLookup
	orgRedirect  OrgRedirectLookup
	cfg          config.BookingConfig
	logger       *zap.Logger
	now          func() time.Time
}

// NewResolver creates a resolver.
func NewResolver(
	users UserSource,
	eventTypes EventTypeSource,
	userRedirect UserRedirectLookup,
	orgRedirect OrgRedirectLookup,
	cfg config.BookingConfig,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		users:        users,
		eventTypes:   eventTypes,
		userRedirect: userRedirect,
		orgRedirect:  orgRedirect,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// Resolve runs the decision table in strict order; the first terminal rule wins.
// Only per-event-type metadata failures are recovered; any collaborator error is
// fatal for the page load.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Outcome, error) {
	orgSlug, validOrg := orgdomain.Parse(req.Host, req.OrgSlugParam, r.cfg.BaseDomain)
	usernames := ParseUsernameList(req.UsernameParam)
	outOfOffice := false

	if len(usernames) == 1 {
		res, err := r.userRedirect.Lookup(ctx, usernames[0], r.now())
		if err != nil {
			return nil, err
		}
		if res != nil {
			if res.ToUsername != nil {
				return redirectOutcome(userRedirectDestination(usernames[0], *res.ToUsername, req.Query)), nil
			}
			outOfOffice = res.OutOfOffice
		}
	}

	if !validOrg {
		// Outside an org domain a username may have moved into an organization;
		// an org-migration redirect wins over everything below.
		dest, err := r.orgRedirectDestination(ctx, usernames, req.Query)
		if err != nil {
			return nil, err
		}
		if dest != "" {
			return redirectOutcome(dest), nil
		}
	}

	var orgSlugPtr *string
	if validOrg {
		orgSlugPtr = &orgSlug
	}

	fetchStart := r.now()
	users, err := r.users.FindUsersByUsernames(ctx, usernames, orgSlugPtr)
	if err != nil {
		return nil, err
	}

	if len(users) > 1 {
		// Dynamic group: canonical path joins the original, order-preserved list.
		return redirectOutcome("/" + strings.Join(usernames, "+") + "/dynamic"), nil
	}

	anyNonOrgUser := false
	for _, u := range users {
		if u.Profile.Organization == nil {
			anyNonOrgUser = true
		}
	}
	if len(users) == 0 || (!validOrg && !anyNonOrgUser) {
		return &Outcome{Kind: OutcomeNotFound}, nil
	}

	user := users[0]
	evts, err := r.eventTypes.FindPersonalByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	fetchTime := r.now().Sub(fetchStart)

	visible := r.visibleEventTypes(evts)

	if len(visible) == 1 && req.Query.Get("redirect") != "false" && !outOfOffice {
		dest := "/" + derefOr(user.Profile.Username, usernames[0]) + "/" + visible[0].Slug
		if enc := req.Query.Encode(); enc != "" {
			dest += "?" + enc
		}
		out := redirectOutcome(dest)
		out.FetchTime = fetchTime
		return out, nil
	}

	page := r.buildPage(user, visible, usernames, orgSlugPtr, outOfOffice)
	return &Outcome{Kind: OutcomePage, Page: page, FetchTime: fetchTime}, nil
}

// visibleEventTypes validates metadata and drops hidden entries. A corrupt
// metadata blob excludes that event type only; the rest of the page survives.
func (r *Resolver) visibleEventTypes(evts []models.EventType) []PageEventType {
	eventtypes.SortForDisplay(evts)
	out := make([]PageEventType, 0, len(evts))
	for _, et := range evts {
		meta, err := eventtypes.DecodeMetadata(et.Metadata)
		if err != nil {
			r.logger.Error("excluding event type with invalid metadata",
				zap.Int64("event_type_id", et.ID), zap.Error(err))
			continue
		}
		if et.Hidden {
			continue
		}
		desc := ""
		if et.Description != nil {
			desc = markdown.SafeHTML(*et.Description)
		}
		out = append(out, PageEventType{
			ID:                    et.ID,
			Title:                 et.Title,
			Slug:                  et.Slug,
			Length:                et.Length,
			Hidden:                et.Hidden,
			Position:              et.Position,
			RequiresConfirmation:  et.RequiresConfirmation,
			Price:                 et.Price,
			Currency:              et.Currency,
			RecurringEvent:        et.RecurringEvent,
			Metadata:              meta,
			DescriptionAsSafeHTML: desc,
		})
	}
	return out
}

func (r *Resolver) buildPage(user models.UserWithProfile, visible []PageEventType, usernames []string, currentOrgSlug *string, outOfOffice bool) *PageData {
	name := ""
	if user.Name != nil && *user.Name != "" {
		name = *user.Name
	} else if user.Username != nil {
		name = *user.Username
	}

	image := ""
	if user.Username != nil {
		image = "/" + *user.Username + "/avatar.png"
	}

	profile := PageProfile{
		Name:             name,
		Image:            image,
		Username:         user.Username,
		Theme:            user.Theme,
		BrandColor:       derefOr(user.BrandColor, r.cfg.LightBrandColor),
		DarkBrandColor:   derefOr(user.DarkBrandColor, r.cfg.DarkBrandColor),
		AvatarURL:        user.AvatarURL,
		AllowSEOIndexing: user.AllowSEOIndexing == nil || *user.AllowSEOIndexing,
		Organization:     user.Profile.Organization,
	}

	bio := ""
	if user.Bio != nil {
		bio = *user.Bio
	}

	away := user.Away
	if len(usernames) == 1 {
		away = outOfOffice
	}

	org := user.Profile.Organization
	entity := Entity{
		IsUnpublished: org != nil && org.Slug == nil,
		OrgSlug:       currentOrgSlug,
	}
	if org != nil {
		entity.Name = &org.Name
	}

	return &PageData{
		Users: []PageUser{{
			Name:      user.Name,
			Username:  user.Username,
			Bio:       user.Bio,
			AvatarURL: user.AvatarURL,
			Away:      away,
			Verified:  user.Verified,
			Profile:   user.Profile,
		}},
		Profile:             profile,
		EventTypes:          visible,
		SafeBio:             markdown.SafeHTML(bio),
		MarkdownStrippedBio: markdown.Strip(bio),
		Entity:              entity,
		ThemeBasis:          user.Username,
	}
}

// orgRedirectDestination returns a destination only when every listed slug has
// an enabled redirect of the user type; partial matches fall through.
func (r *Resolver) orgRedirectDestination(ctx context.Context, usernames []string, query url.Values) (string, error) {
	if len(usernames) == 0 {
		return "", nil
	}
	rows, err := r.orgRedirect.Lookup(ctx, usernames, models.RedirectTypeUser)
	if err != nil {
		return "", err
	}
	byFrom := make(map[string]string, len(rows))
	for _, row := range rows {
		byFrom[row.FromSlug] = row.ToURL
	}
	for _, u := range usernames {
		if _, ok := byFrom[u]; !ok {
			return "", nil
		}
	}

	dest := byFrom[usernames[0]]
	if len(usernames) > 1 {
		// Dynamic group moved wholesale: rebuild the joined path on the
		// destination origin, preserving input order.
		first, err := url.Parse(byFrom[usernames[0]])
		if err != nil {
			return "", fmt.Errorf("parse org redirect url %q: %w", byFrom[usernames[0]], err)
		}
		names := make([]string, 0, len(usernames))
		for _, u := range usernames {
			target, err := url.Parse(byFrom[u])
			if err != nil {
				return "", fmt.Errorf("parse org redirect url %q: %w", byFrom[u], err)
			}
			names = append(names, strings.Trim(target.Path, "/"))
		}
		dest = first.Scheme + "://" + first.Host + "/" + strings.Join(names, "+")
	}
	if enc := query.Encode(); enc != "" {
		dest += "?" + enc
	}
	return dest, nil
}

// userRedirectDestination forwards a visitor to the covering user, carrying the
// original query plus the presentational redirected/username parameters.
func userRedirectDestination(from, to string, query url.Values) string {
	q := url.Values{}
	for k, vs := range query {
		q[k] = append([]string(nil), vs...)
	}
	q.Set("redirected", "true")
	q.Set("username", from)
	return "/" + to + "?" + q.Encode()
}

func redirectOutcome(destination string) *Outcome {
	return &Outcome{Kind: OutcomeRedirect, Redirect: &Redirect{Destination: destination}}
}

func derefOr(s *string, fallback string) string {
	if s != nil && *s != "" {
		return *s
	}
	return fallback
}
