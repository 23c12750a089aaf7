package booking

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/openmeet/backend/config"
	"github.com/openmeet/backend/internal/models"
	"github.com/openmeet/backend/internal/profiles"
	"github.com/openmeet/backend/internal/redirects"
)

type fakeUserSource struct {
	users        []models.UserWithProfile
	gotUsernames []string
	gotOrgSlug   *string
}

func (f *fakeUserSource) FindUsersByUsernames(_ context.Context, usernames []string, orgSlug *string) ([]models.UserWithProfile, error) {
	f.gotUsernames = usernames
	f.gotOrgSlug = orgSlug
	return f.users, nil
}

type fakeEventTypeSource struct {
	evts []models.EventType
}

func (f *fakeEventTypeSource) FindPersonalByUserID(context.Context, int64) ([]models.EventType, error) {
	return f.evts, nil
}

type fakeUserRedirects struct {
	res *redirects.UserRedirect
}

func (f *fakeUserRedirects) Lookup(context.Context, string, time.Time) (*redirects.UserRedirect, error) {
	return f.res, nil
}

type fakeOrgRedirects struct {
	rows []models.OrgRedirect
}

func (f *fakeOrgRedirects) Lookup(context.Context, []string, string) ([]models.OrgRedirect, error) {
	return f.rows, nil
}

func testConfig() config.BookingConfig {
	return config.BookingConfig{
		BaseDomain:      "openmeet.dev",
		LightBrandColor: "#292929",
		DarkBrandColor:  "#fafafa",
	}
}

func newTestResolver(us *fakeUserSource, es *fakeEventTypeSource, ur *fakeUserRedirects, or *fakeOrgRedirects) *Resolver {
	if us == nil {
		us = &fakeUserSource{}
	}
	if es == nil {
		es = &fakeEventTypeSource{}
	}
	if ur == nil {
		ur = &fakeUserRedirects{}
	}
	if or == nil {
		or = &fakeOrgRedirects{}
	}
	return NewResolver(us, es, ur, or, testConfig(), zap.NewNop())
}

func strPtr(s string) *string { return &s }

func personalUser(id int64, username string) models.UserWithProfile {
	un := username
	return models.UserWithProfile{
		User:    models.User{ID: id, Username: &un, Email: username + "@example.com"},
		Profile: profiles.BuildPersonalProfile(id, &un),
	}
}

func orgUser(id int64, username string, orgID int64, orgSlug *string, orgName string) models.UserWithProfile {
	un := username
	pid := id * 100
	return models.UserWithProfile{
		User: models.User{ID: id, Username: &un, Email: username + "@example.com"},
		Profile: models.UserProfile{
			ID:             &pid,
			UpID:           "42",
			UserID:         id,
			Username:       &un,
			OrganizationID: &orgID,
			Organization:   &models.ParsedOrganization{ID: orgID, Slug: orgSlug, Name: orgName},
		},
	}
}

func pageRequest(userParam, host, rawQuery string) Request {
	q, _ := url.ParseQuery(rawQuery)
	return Request{UsernameParam: userParam, Host: host, Query: q}
}

func visibleEvent(id int64, slug string, position int) models.EventType {
	return models.EventType{ID: id, Title: slug, Slug: slug, Position: position, Currency: "usd"}
}

func TestResolve_DynamicGroupRedirect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		param    string
		wantDest string
	}{
		{name: "plus-delimited", param: "alice+bob", wantDest: "/alice+bob/dynamic"},
		{name: "comma-delimited", param: "alice,bob", wantDest: "/alice+bob/dynamic"},
		{name: "order preserved", param: "bob+alice", wantDest: "/bob+alice/dynamic"},
		{name: "three users", param: "carol+alice+bob", wantDest: "/carol+alice+bob/dynamic"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			us := &fakeUserSource{users: []models.UserWithProfile{
				personalUser(1, "alice"), personalUser(2, "bob"), personalUser(3, "carol"),
			}}
			r := newTestResolver(us, nil, nil, nil)

			out, err := r.Resolve(context.Background(), pageRequest(tt.param, "openmeet.dev", ""))
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if out.Kind != OutcomeRedirect {
				t.Fatalf("expected redirect, got kind %v", out.Kind)
			}
			if out.Redirect.Destination != tt.wantDest {
				t.Errorf("destination = %q, want %q", out.Redirect.Destination, tt.wantDest)
			}
			if out.Redirect.Permanent {
				t.Error("dynamic group redirect must not be permanent")
			}
		})
	}
}

func TestResolve_NotFound(t *testing.T) {
	t.Parallel()

	t.Run("no users resolved", func(t *testing.T) {
		t.Parallel()
		r := newTestResolver(&fakeUserSource{}, nil, nil, nil)
		out, err := r.Resolve(context.Background(), pageRequest("ghost", "openmeet.dev", ""))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if out.Kind != OutcomeNotFound {
			t.Fatalf("expected not-found, got kind %v", out.Kind)
		}
	})

	t.Run("org member visited outside org domain", func(t *testing.T) {
		t.Parallel()
		us := &fakeUserSource{users: []models.UserWithProfile{
			orgUser(1, "alice", 10, strPtr("acme"), "Acme"),
		}}
		r := newTestResolver(us, nil, nil, nil)
		out, err := r.Resolve(context.Background(), pageRequest("alice", "openmeet.dev", ""))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if out.Kind != OutcomeNotFound {
			t.Fatalf("expected not-found for exclusively-org user off-domain, got kind %v", out.Kind)
		}
	})

	t.Run("org member visited on own org domain", func(t *testing.T) {
		t.Parallel()
		us := &fakeUserSource{users: []models.UserWithProfile{
			orgUser(1, "alice", 10, strPtr("acme"), "Acme"),
		}}
		r := newTestResolver(us, nil, nil, nil)
		out, err := r.Resolve(context.Background(), pageRequest("alice", "acme.openmeet.dev", ""))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if out.Kind != OutcomePage {
			t.Fatalf("expected page on org domain, got kind %v", out.Kind)
		}
		if us.gotOrgSlug == nil || *us.gotOrgSlug != "acme" {
			t.Errorf("expected lookup scoped to org %q, got %v", "acme", us.gotOrgSlug)
		}
	})
}

func TestResolve_PersonalRedirect(t *testing.T) {
	t.Parallel()

	ur := &fakeUserRedirects{res: &redirects.UserRedirect{ToUsername: strPtr("bob")}}
	// An org redirect also exists; the personal redirect must win.
	or := &fakeOrgRedirects{rows: []models.OrgRedirect{
		{FromSlug: "alice", RedirectType: models.RedirectTypeUser, ToURL: "https://acme.openmeet.dev/alice", Enabled: true},
	}}
	r := newTestResolver(nil, nil, ur, or)

	out, err := r.Resolve(context.Background(), pageRequest("alice", "openmeet.dev", "date=2026-09-01"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Kind != OutcomeRedirect {
		t.Fatalf("expected redirect, got kind %v", out.Kind)
	}
	dest, err := url.Parse(out.Redirect.Destination)
	if err != nil {
		t.Fatalf("parse destination: %v", err)
	}
	if dest.Path != "/bob" {
		t.Errorf("destination path = %q, want /bob", dest.Path)
	}
	q := dest.Query()
	if q.Get("redirected") != "true" || q.Get("username") != "alice" {
		t.Errorf("missing redirect banner params in %q", out.Redirect.Destination)
	}
	if q.Get("date") != "2026-09-01" {
		t.Errorf("original query not forwarded in %q", out.Redirect.Destination)
	}
}

func TestResolve_OrgRedirect(t *testing.T) {
	t.Parallel()

	t.Run("single username", func(t *testing.T) {
		t.Parallel()
		or := &fakeOrgRedirects{rows: []models.OrgRedirect{
			{FromSlug: "alice", RedirectType: models.RedirectTypeUser, ToURL: "https://acme.openmeet.dev/ally", Enabled: true},
		}}
		r := newTestResolver(nil, nil, nil, or)
		out, err := r.Resolve(context.Background(), pageRequest("alice", "openmeet.dev", "a=b"))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if out.Kind != OutcomeRedirect {
			t.Fatalf("expected redirect, got kind %v", out.Kind)
		}
		want := "https://acme.openmeet.dev/ally?a=b"
		if out.Redirect.Destination != want {
			t.Errorf("destination = %q, want %q", out.Redirect.Destination, want)
		}
	})

	t.Run("dynamic group preserves order on new origin", func(t *testing.T) {
		t.Parallel()
		or := &fakeOrgRedirects{rows: []models.OrgRedirect{
			{FromSlug: "bob", RedirectType: models.RedirectTypeUser, ToURL: "https://acme.openmeet.dev/bobby", Enabled: true},
			{FromSlug: "alice", RedirectType: models.RedirectTypeUser, ToURL: "https://acme.openmeet.dev/ally", Enabled: true},
		}}
		r := newTestResolver(nil, nil, nil, or)
		out, err := r.Resolve(context.Background(), pageRequest("bob+alice", "openmeet.dev", ""))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if out.Kind != OutcomeRedirect {
			t.Fatalf("expected redirect, got kind %v", out.Kind)
		}
		want := "https://acme.openmeet.dev/bobby+ally"
		if out.Redirect.Destination != want {
			t.Errorf("destination = %q, want %q", out.Redirect.Destination, want)
		}
	})

	t.Run("partial match falls through", func(t *testing.T) {
		t.Parallel()
		or := &fakeOrgRedirects{rows: []models.OrgRedirect{
			{FromSlug: "alice", RedirectType: models.RedirectTypeUser, ToURL: "https://acme.openmeet.dev/ally", Enabled: true},
		}}
		us := &fakeUserSource{users: []models.UserWithProfile{
			personalUser(1, "alice"), personalUser(2, "bob"),
		}}
		r := newTestResolver(us, nil, nil, or)
		out, err := r.Resolve(context.Background(), pageRequest("alice+bob", "openmeet.dev", ""))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if out.Kind != OutcomeRedirect || !strings.HasSuffix(out.Redirect.Destination, "/dynamic") {
			t.Fatalf("expected fall-through to dynamic group, got %+v", out)
		}
	})

	t.Run("skipped inside valid org domain", func(t *testing.T) {
		t.Parallel()
		or := &fakeOrgRedirects{rows: []models.OrgRedirect{
			{FromSlug: "alice", RedirectType: models.RedirectTypeUser, ToURL: "https://other.openmeet.dev/alice", Enabled: true},
		}}
		us := &fakeUserSource{users: []models.UserWithProfile{
			orgUser(1, "alice", 10, strPtr("acme"), "Acme"),
		}}
		r := newTestResolver(us, nil, nil, or)
		out, err := r.Resolve(context.Background(), pageRequest("alice", "acme.openmeet.dev", ""))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if out.Kind != OutcomePage {
			t.Fatalf("org redirect must not apply inside a valid org domain, got kind %v", out.Kind)
		}
	})
}

func TestResolve_SingleOfferingRedirect(t *testing.T) {
	t.Parallel()

	single := []models.EventType{visibleEvent(1, "intro-call", 0)}

	t.Run("redirects with query passthrough", func(t *testing.T) {
		t.Parallel()
		us := &fakeUserSource{users: []models.UserWithProfile{personalUser(1, "alice")}}
		r := newTestResolver(us, &fakeEventTypeSource{evts: single}, nil, nil)
		out, err := r.Resolve(context.Background(), pageRequest("alice", "openmeet.dev", "guest=carol&notes=hi"))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if out.Kind != OutcomeRedirect {
			t.Fatalf("expected redirect, got kind %v", out.Kind)
		}
		dest, _ := url.Parse(out.Redirect.Destination)
		if dest.Path != "/alice/intro-call" {
			t.Errorf("destination path = %q, want /alice/intro-call", dest.Path)
		}
		q := dest.Query()
		if q.Get("guest") != "carol" || q.Get("notes") != "hi" {
			t.Errorf("query not forwarded unchanged: %q", out.Redirect.Destination)
		}
	})

	t.Run("redirect=false opts out", func(t *testing.T) {
		t.Parallel()
		us := &fakeUserSource{users: []models.UserWithProfile{personalUser(1, "alice")}}
		r := newTestResolver(us, &fakeEventTypeSource{evts: single}, nil, nil)
		out, err := r.Resolve(context.Background(), pageRequest("alice", "openmeet.dev", "redirect=false"))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if out.Kind != OutcomePage {
			t.Fatalf("expected page with redirect=false, got kind %v", out.Kind)
		}
	})

	t.Run("out of office opts out", func(t *testing.T) {
		t.Parallel()
		us := &fakeUserSource{users: []models.UserWithProfile{personalUser(1, "alice")}}
		ur := &fakeUserRedirects{res: &redirects.UserRedirect{OutOfOffice: true}}
		r := newTestResolver(us, &fakeEventTypeSource{evts: single}, ur, nil)
		out, err := r.Resolve(context.Background(), pageRequest("alice", "openmeet.dev", ""))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if out.Kind != OutcomePage {
			t.Fatalf("expected page while out of office, got kind %v", out.Kind)
		}
		if len(out.Page.Users) != 1 || !out.Page.Users[0].Away {
			t.Error("expected the page user to be marked away")
		}
	})

	t.Run("two visible event types render a page", func(t *testing.T) {
		t.Parallel()
		us := &fakeUserSource{users: []models.UserWithProfile{personalUser(1, "alice")}}
		evts := []models.EventType{visibleEvent(1, "intro-call", 0), visibleEvent(2, "deep-dive", 0)}
		r := newTestResolver(us, &fakeEventTypeSource{evts: evts}, nil, nil)
		out, err := r.Resolve(context.Background(), pageRequest("alice", "openmeet.dev", ""))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if out.Kind != OutcomePage {
			t.Fatalf("expected page, got kind %v", out.Kind)
		}
		if len(out.Page.EventTypes) != 2 {
			t.Errorf("expected 2 event types, got %d", len(out.Page.EventTypes))
		}
	})
}

func TestResolve_EventTypeFiltering(t *testing.T) {
	t.Parallel()

	us := &fakeUserSource{users: []models.UserWithProfile{personalUser(1, "alice")}}
	corrupt := visibleEvent(3, "corrupt", 5)
	corrupt.Metadata = []byte(`{"requiresConfirmationThreshold":{"time":10,"unit":"days"}}`)
	hidden := visibleEvent(2, "secret", 9)
	hidden.Hidden = true
	evts := []models.EventType{
		visibleEvent(4, "later", 1),
		hidden,
		corrupt,
		visibleEvent(1, "first", 7),
	}
	r := newTestResolver(us, &fakeEventTypeSource{evts: evts}, nil, nil)

	out, err := r.Resolve(context.Background(), pageRequest("alice", "openmeet.dev", "redirect=false"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Kind != OutcomePage {
		t.Fatalf("expected page, got kind %v", out.Kind)
	}
	got := make([]string, 0, len(out.Page.EventTypes))
	for _, et := range out.Page.EventTypes {
		got = append(got, et.Slug)
	}
	// Corrupt metadata and hidden entries are dropped; the rest keep display order.
	want := []string{"first", "later"}
	if len(got) != len(want) {
		t.Fatalf("event types = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event types = %v, want %v", got, want)
		}
	}
}

func TestResolve_UnpublishedEntity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		user            models.UserWithProfile
		host            string
		wantUnpublished bool
	}{
		{
			name:            "org with null slug is unpublished",
			user:            orgUser(1, "alice", 10, nil, "Acme"),
			host:            "openmeet.dev",
			wantUnpublished: true,
		},
		{
			name:            "no organization is never unpublished",
			user:            personalUser(1, "alice"),
			host:            "openmeet.dev",
			wantUnpublished: false,
		},
		{
			name:            "org with slug is published",
			user:            orgUser(1, "alice", 10, strPtr("acme"), "Acme"),
			host:            "acme.openmeet.dev",
			wantUnpublished: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			us := &fakeUserSource{users: []models.UserWithProfile{tt.user}}
			r := newTestResolver(us, nil, nil, nil)
			req := pageRequest("alice", tt.host, "")
			if tt.user.Profile.Organization != nil && tt.user.Profile.Organization.Slug == nil {
				// An unpublished org has no domain yet; the visit arrives with an
				// explicit org slug from the rewrite layer.
				req.OrgSlugParam = "acme"
			}
			out, err := r.Resolve(context.Background(), req)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if out.Kind != OutcomePage {
				t.Fatalf("expected page, got kind %v", out.Kind)
			}
			if out.Page.Entity.IsUnpublished != tt.wantUnpublished {
				t.Errorf("IsUnpublished = %v, want %v", out.Page.Entity.IsUnpublished, tt.wantUnpublished)
			}
		})
	}
}

func TestResolve_ProfileFallbacks(t *testing.T) {
	t.Parallel()

	us := &fakeUserSource{users: []models.UserWithProfile{personalUser(1, "alice")}}
	r := newTestResolver(us, nil, nil, nil)

	out, err := r.Resolve(context.Background(), pageRequest("alice", "openmeet.dev", ""))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Kind != OutcomePage {
		t.Fatalf("expected page, got kind %v", out.Kind)
	}
	p := out.Page.Profile
	if p.Name != "alice" {
		t.Errorf("name should fall back to username, got %q", p.Name)
	}
	if p.BrandColor != "#292929" || p.DarkBrandColor != "#fafafa" {
		t.Errorf("brand colors should fall back to defaults, got %q / %q", p.BrandColor, p.DarkBrandColor)
	}
	if !p.AllowSEOIndexing {
		t.Error("SEO indexing should default to allowed")
	}
}
