/**
 * @description
 * This file contains the application service for the onboarding flow. It
 * loads the user's flow from the persisted snapshot, applies step updates
 * and navigation, and writes the snapshot back after every mutation so a
 * reload always resumes where the user left off.
 */
package app

import (
	"context"
	"errors"

	"github.com/eventra/onboarding-service/internal/domain"
	"github.com/eventra/onboarding-service/internal/flow"
)

// ProgressStore persists in-progress flows. Load never fails; it falls open
// to a fresh flow when the snapshot is absent, stale or corrupt.
type ProgressStore interface {
	Load(ctx context.Context, userID string) *flow.Flow
	Save(ctx context.Context, userID string, f *flow.Flow)
	Clear(ctx context.Context, userID string)
}

// ProfileRepository is the identity/profile store used at submission time.
type ProfileRepository interface {
	UpdateProfile(ctx context.Context, userID string, p domain.ProfileUpdate) error
	UpsertPreferences(ctx context.Context, userID string, prefs domain.Preferences) error
	UpsertRoleGrant(ctx context.Context, userID string, role domain.Role) error
}

// OrganizationRepository is the organization directory.
type OrganizationRepository interface {
	CreateOrganization(ctx context.Context, ownerID string, draft domain.OrganizationDraft) (*domain.Organization, error)
	RequestJoin(ctx context.Context, orgID, userID string) error
	SearchOrganizations(ctx context.Context, query string) ([]domain.Organization, error)
}

// Publisher publishes completion events for downstream role-cache refresh.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// NavigationAction names the three sequencer transitions.
type NavigationAction string

const (
	NavigateNext NavigationAction = "next"
	NavigatePrev NavigationAction = "prev"
	NavigateGoTo NavigationAction = "goto"
)

// ErrUnknownNavigation is returned for an unrecognized navigation action.
var ErrUnknownNavigation = errors.New("unknown navigation action")

// State is the wizard-facing view of a flow: the resolved step sequence,
// the current position and the answers collected so far.
type State struct {
	Steps      []domain.StepID `json:"steps"`
	StepIndex  int             `json:"step_index"`
	TotalSteps int             `json:"total_steps"`
	Answers    domain.Answers  `json:"answers"`
}

// Service drives the onboarding flow for one user at a time.
type Service struct {
	progress  ProgressStore
	profiles  ProfileRepository
	orgs      OrganizationRepository
	publisher Publisher
}

// NewService creates a new onboarding service.
func NewService(progress ProgressStore, profiles ProfileRepository, orgs OrganizationRepository, publisher Publisher) *Service {
	return &Service{
		progress:  progress,
		profiles:  profiles,
		orgs:      orgs,
		publisher: publisher,
	}
}

func stateOf(f *flow.Flow) State {
	steps := f.Steps()
	return State{
		Steps:      steps,
		StepIndex:  f.StepIndex,
		TotalSteps: len(steps),
		Answers:    f.Answers,
	}
}

// Resume rehydrates the user's flow from persistence, or starts fresh when
// nothing valid is stored.
func (s *Service) Resume(ctx context.Context, userID string) State {
	return stateOf(s.progress.Load(ctx, userID))
}

// UpdateStep records a validated answer for exactly one step and persists
// the whole aggregate with the current index.
func (s *Service) UpdateStep(ctx context.Context, userID string, payload domain.StepPayload) (State, error) {
	f := s.progress.Load(ctx, userID)
	if err := f.Apply(payload); err != nil {
		return stateOf(f), err
	}
	s.progress.Save(ctx, userID, f)
	return stateOf(f), nil
}

// Navigate moves the flow and persists the snapshot with the NEW index, so
// a reload resumes on the step the user was navigating toward.
func (s *Service) Navigate(ctx context.Context, userID string, action NavigationAction, target int) (State, error) {
	f := s.progress.Load(ctx, userID)
	switch action {
	case NavigateNext:
		f.Next()
	case NavigatePrev:
		f.Prev()
	case NavigateGoTo:
		f.GoTo(target)
	default:
		return stateOf(f), ErrUnknownNavigation
	}
	s.progress.Save(ctx, userID, f)
	return stateOf(f), nil
}

// Abandon clears the persisted snapshot, resetting the flow to empty.
func (s *Service) Abandon(ctx context.Context, userID string) {
	s.progress.Clear(ctx, userID)
}

// SearchOrganizations passes an organization directory query through for
// the organization-setup step.
func (s *Service) SearchOrganizations(ctx context.Context, query string) ([]domain.Organization, error) {
	return s.orgs.SearchOrganizations(ctx, query)
}
