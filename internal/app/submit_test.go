package app

import (
	"context"
	"errors"
	"testing"

	"github.com/eventra/onboarding-service/internal/domain"
	"github.com/eventra/onboarding-service/internal/flow"
)

type progressStub struct {
	current *flow.Flow
	saves   int
	cleared bool
}

func (p *progressStub) Load(ctx context.Context, userID string) *flow.Flow {
	if p.current == nil {
		return &flow.Flow{}
	}
	copied := *p.current
	return &copied
}

func (p *progressStub) Save(ctx context.Context, userID string, f *flow.Flow) {
	copied := *f
	p.current = &copied
	p.saves++
}

func (p *progressStub) Clear(ctx context.Context, userID string) {
	p.current = nil
	p.cleared = true
}

type profileRepoStub struct {
	calls *[]string

	updateErr error
	prefsErr  error
	grantErr  error

	updatedProfile domain.ProfileUpdate
	grantedRole    domain.Role
}

func (r *profileRepoStub) UpdateProfile(ctx context.Context, userID string, p domain.ProfileUpdate) error {
	*r.calls = append(*r.calls, "profile")
	r.updatedProfile = p
	return r.updateErr
}

func (r *profileRepoStub) UpsertPreferences(ctx context.Context, userID string, prefs domain.Preferences) error {
	*r.calls = append(*r.calls, "preferences")
	return r.prefsErr
}

func (r *profileRepoStub) UpsertRoleGrant(ctx context.Context, userID string, role domain.Role) error {
	*r.calls = append(*r.calls, "grant")
	r.grantedRole = role
	return r.grantErr
}

type orgRepoStub struct {
	calls *[]string

	createErr error
	joinErr   error

	created   *domain.Organization
	joinedOrg string
}

func (r *orgRepoStub) CreateOrganization(ctx context.Context, ownerID string, draft domain.OrganizationDraft) (*domain.Organization, error) {
	*r.calls = append(*r.calls, "create_org")
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.created = &domain.Organization{ID: "org_1", Name: draft.Name, Slug: draft.Slug, OwnerID: ownerID}
	return r.created, nil
}

func (r *orgRepoStub) RequestJoin(ctx context.Context, orgID, userID string) error {
	*r.calls = append(*r.calls, "join_org")
	r.joinedOrg = orgID
	return r.joinErr
}

func (r *orgRepoStub) SearchOrganizations(ctx context.Context, query string) ([]domain.Organization, error) {
	return nil, nil
}

type publisherStub struct {
	err error
}

func (p *publisherStub) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	return p.err
}

func newTestService(f *flow.Flow) (*Service, *progressStub, *profileRepoStub, *orgRepoStub) {
	calls := &[]string{}
	progress := &progressStub{current: f}
	profiles := &profileRepoStub{calls: calls}
	orgs := &orgRepoStub{calls: calls}
	return NewService(progress, profiles, orgs, &publisherStub{}), progress, profiles, orgs
}

func attendeeFlow() *flow.Flow {
	role := domain.RoleAttendee
	f := &flow.Flow{
		Answers: domain.Answers{
			Role:         &role,
			BasicProfile: &domain.BasicProfile{DisplayName: "Ada", Handle: "ada"},
			About:        &domain.AttendeeAbout{Bio: "systems person", Skills: []string{"audio"}},
			Preferences: &domain.Preferences{
				Attendee: &domain.AttendeePreferences{EventInterests: []string{"tech"}, NotificationCadence: "weekly"},
			},
		},
	}
	f.GoTo(4)
	return f
}

func organizerFlow(setup *domain.OrganizationSetup) *flow.Flow {
	role := domain.RoleOrganizer
	f := &flow.Flow{
		Answers: domain.Answers{
			Role:              &role,
			BasicProfile:      &domain.BasicProfile{DisplayName: "Grace", Handle: "grace"},
			OrganizationSetup: setup,
			Preferences: &domain.Preferences{
				Organizer: &domain.OrganizerPreferences{ExpectedEventTypes: []string{"conference"}, TeamSize: "2-10"},
			},
		},
	}
	f.GoTo(4)
	return f
}

func TestSubmit_AttendeeClearsProgressAndLandsHome(t *testing.T) {
	svc, progress, profiles, _ := newTestService(attendeeFlow())

	result, err := svc.Submit(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected submission to succeed, got %v", err)
	}
	if result.Destination != DestinationHome {
		t.Fatalf("expected destination %q, got %q", DestinationHome, result.Destination)
	}
	if !progress.cleared {
		t.Fatal("expected persisted progress to be cleared after success")
	}
	if profiles.grantedRole != domain.RoleAttendee {
		t.Fatalf("expected attendee role grant, got %q", profiles.grantedRole)
	}

	want := []string{"profile", "preferences", "grant"}
	got := *profiles.calls
	if len(got) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected commit order %v, got %v", want, got)
		}
	}
}

func TestSubmit_OrganizationCreateFailureAbortsBeforeIdentityWrites(t *testing.T) {
	f := organizerFlow(&domain.OrganizationSetup{
		Action: domain.OrgSetupCreate,
		Create: &domain.OrganizationDraft{Name: "Acme Events", Slug: "acme-events"},
	})
	svc, progress, profiles, orgs := newTestService(f)
	orgs.createErr = errors.New("directory unavailable")

	_, err := svc.Submit(context.Background(), "user-1")
	if err == nil {
		t.Fatal("expected submission to fail when organization create fails")
	}
	for _, call := range *profiles.calls {
		if call == "profile" || call == "preferences" || call == "grant" {
			t.Fatalf("expected no identity writes after org failure, saw %q", call)
		}
	}
	if progress.cleared {
		t.Fatal("expected progress to be preserved for retry")
	}
	if progress.current.StepIndex != 4 {
		t.Fatalf("expected step index unchanged at 4, got %d", progress.current.StepIndex)
	}
}

func TestSubmit_OrganizerCreateLandsOnOrganizationDashboard(t *testing.T) {
	f := organizerFlow(&domain.OrganizationSetup{
		Action: domain.OrgSetupCreate,
		Create: &domain.OrganizationDraft{Name: "Acme Events", Slug: "acme-events"},
	})
	svc, _, _, _ := newTestService(f)

	result, err := svc.Submit(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected submission to succeed, got %v", err)
	}
	if result.Destination != "/organizations/acme-events/dashboard" {
		t.Fatalf("expected the new organization's dashboard, got %q", result.Destination)
	}
	if result.Organization == nil || result.Organization.Slug != "acme-events" {
		t.Fatalf("expected the created organization in the result, got %+v", result.Organization)
	}
}

func TestSubmit_OrganizerJoinMarksMembershipPending(t *testing.T) {
	f := organizerFlow(&domain.OrganizationSetup{
		Action: domain.OrgSetupJoin,
		Join:   &domain.OrganizationRef{OrganizationID: "org_42", OrganizationName: "Existing Org"},
	})
	svc, progress, _, orgs := newTestService(f)

	result, err := svc.Submit(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected submission to succeed, got %v", err)
	}
	if orgs.joinedOrg != "org_42" {
		t.Fatalf("expected join request for org_42, got %q", orgs.joinedOrg)
	}
	if !result.MembershipPending {
		t.Fatal("expected membership to be reported pending")
	}
	if result.Destination != DestinationHome {
		t.Fatalf("expected the generic landing page while membership is pending, got %q", result.Destination)
	}
	if !progress.cleared {
		t.Fatal("expected progress cleared after a successful join submission")
	}
}

func TestSubmit_OrganizerSkipDefersOrganizationSetup(t *testing.T) {
	f := organizerFlow(&domain.OrganizationSetup{Action: domain.OrgSetupSkip})
	svc, _, _, _ := newTestService(f)

	result, err := svc.Submit(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected submission to succeed, got %v", err)
	}
	if result.Destination != DestinationOrganizationSetup {
		t.Fatalf("expected the deferred setup prompt, got %q", result.Destination)
	}
}

func TestSubmit_IncompleteAnswersAreRejected(t *testing.T) {
	role := domain.RoleAttendee
	f := &flow.Flow{Answers: domain.Answers{Role: &role}}
	svc, progress, profiles, _ := newTestService(f)

	_, err := svc.Submit(context.Background(), "user-1")
	if !errors.Is(err, ErrSubmissionIncomplete) {
		t.Fatalf("expected ErrSubmissionIncomplete, got %v", err)
	}
	if len(*profiles.calls) != 0 {
		t.Fatalf("expected no remote calls for an incomplete aggregate, got %v", *profiles.calls)
	}
	if progress.cleared {
		t.Fatal("expected progress untouched for an incomplete aggregate")
	}
}

func TestSubmit_RetryAfterPreferencesFailureSucceeds(t *testing.T) {
	svc, progress, profiles, _ := newTestService(attendeeFlow())
	profiles.prefsErr = errors.New("preferences store unavailable")

	if _, err := svc.Submit(context.Background(), "user-1"); err == nil {
		t.Fatal("expected first submission to fail")
	}
	if progress.cleared {
		t.Fatal("expected progress preserved after a mid-sequence failure")
	}

	// The store recovers; the user retries from the top.
	profiles.prefsErr = nil
	result, err := svc.Submit(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if result.Destination != DestinationHome {
		t.Fatalf("expected destination %q, got %q", DestinationHome, result.Destination)
	}
	if !progress.cleared {
		t.Fatal("expected progress cleared after the successful retry")
	}
}

func TestSubmit_SkippedConnectivityWritesNulls(t *testing.T) {
	f := attendeeFlow()
	f.Answers.Connectivity = nil
	svc, _, profiles, _ := newTestService(f)

	if _, err := svc.Submit(context.Background(), "user-1"); err != nil {
		t.Fatalf("expected submission to succeed, got %v", err)
	}
	p := profiles.updatedProfile
	if p.Twitter != nil || p.LinkedIn != nil || p.Instagram != nil || p.Website != nil || p.PhoneNumber != nil {
		t.Fatal("expected skipped connectivity fields to be written as null")
	}
	if p.DisplayName != "Ada" || p.Handle != "ada" {
		t.Fatalf("expected basic profile fields in the merged payload, got %+v", p)
	}
}

func TestPublishCompletionEvents_SwallowsPublishErrors(t *testing.T) {
	calls := &[]string{}
	svc := NewService(&progressStub{}, &profileRepoStub{calls: calls}, &orgRepoStub{calls: calls}, &publisherStub{err: errors.New("broker down")})

	// Must not panic and must not surface the error anywhere.
	svc.publishCompletionEvents("user-1", domain.RoleAttendee, nil)
}
