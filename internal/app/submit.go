/**
 * @description
 * The submission orchestrator. On the final step it runs the ordered commit
 * sequence — organization create/join, merged profile update, preferences
 * upsert, role grant — then clears the persisted flow and computes where to
 * send the user.
 *
 * The sequence is deliberately not a distributed transaction. A failure at
 * the organization stage aborts before anything else is written; a failure
 * later leaves earlier writes in place, and because the profile update and
 * both upserts are idempotent the whole sequence is safely retriable from
 * the top. The persisted flow is only cleared after every stage succeeds,
 * so a retry never requires re-entering data.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/eventra/onboarding-service/internal/domain"
)

// EventsExchange is the topic exchange completion events are published to.
const EventsExchange = "eventra.events"

// Post-completion destinations.
const (
	DestinationHome              = "/home"
	DestinationOrganizationSetup = "/organizations/setup"
)

// ErrSubmissionIncomplete is returned when the aggregate is missing a field
// required for submission. The UI should never let this happen; it gates
// the submit action on the final step's validation.
var ErrSubmissionIncomplete = errors.New("onboarding answers are incomplete")

// SubmissionResult reports a successful submission: where to navigate and,
// for organizers who created one, the new organization.
type SubmissionResult struct {
	Destination       string               `json:"destination"`
	Organization      *domain.Organization `json:"organization,omitempty"`
	MembershipPending bool                 `json:"membership_pending"`
}

// Submit runs the commit sequence for the user's completed flow. On any
// failure the persisted snapshot and step index are left untouched so the
// user stays on the final step and can retry.
func (s *Service) Submit(ctx context.Context, userID string) (*SubmissionResult, error) {
	f := s.progress.Load(ctx, userID)
	answers := f.Answers

	if err := checkComplete(answers); err != nil {
		return nil, err
	}
	role := *answers.Role

	// Stage 1-2: organization setup, organizer branch only. Failing here
	// aborts before any identity write happens.
	result := &SubmissionResult{Destination: DestinationHome}
	if role == domain.RoleOrganizer && answers.OrganizationSetup != nil {
		switch answers.OrganizationSetup.Action {
		case domain.OrgSetupCreate:
			org, err := s.orgs.CreateOrganization(ctx, userID, *answers.OrganizationSetup.Create)
			if err != nil {
				return nil, fmt.Errorf("create organization: %w", err)
			}
			result.Organization = org
			result.Destination = "/organizations/" + org.Slug + "/dashboard"
		case domain.OrgSetupJoin:
			if err := s.orgs.RequestJoin(ctx, answers.OrganizationSetup.Join.OrganizationID, userID); err != nil {
				return nil, fmt.Errorf("request membership: %w", err)
			}
			result.MembershipPending = true
		case domain.OrgSetupSkip:
			result.Destination = DestinationOrganizationSetup
		}
	} else if role == domain.RoleOrganizer {
		// Organizer who never reached the setup step counts as a skip.
		result.Destination = DestinationOrganizationSetup
	}

	// Stage 3: one merged profile write. Absent optional fields go out as
	// NULL, overwriting earlier values; skipping a step means explicitly
	// blank.
	if err := s.profiles.UpdateProfile(ctx, userID, buildProfileUpdate(answers)); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	// Stage 4: preferences upsert, idempotent on user id.
	if err := s.profiles.UpsertPreferences(ctx, userID, *answers.Preferences); err != nil {
		return nil, fmt.Errorf("upsert preferences: %w", err)
	}

	// Stage 5: role grant upsert, idempotent on (user, role).
	if err := s.profiles.UpsertRoleGrant(ctx, userID, role); err != nil {
		return nil, fmt.Errorf("upsert role grant: %w", err)
	}

	// All writes landed; the attempt is finished.
	s.progress.Clear(ctx, userID)

	// Best-effort role-cache refresh. Detached on purpose: a publish
	// failure must never block navigation to the destination.
	go s.publishCompletionEvents(userID, role, result.Organization)

	return result, nil
}

func checkComplete(answers domain.Answers) error {
	if answers.Role == nil {
		return fmt.Errorf("%w: role is not set", ErrSubmissionIncomplete)
	}
	if answers.BasicProfile == nil {
		return fmt.Errorf("%w: basic profile is missing", ErrSubmissionIncomplete)
	}
	if answers.Preferences == nil {
		return fmt.Errorf("%w: preferences are missing", ErrSubmissionIncomplete)
	}
	if *answers.Role == domain.RoleAttendee && answers.Preferences.Attendee == nil {
		return fmt.Errorf("%w: attendee preferences are missing", ErrSubmissionIncomplete)
	}
	if *answers.Role == domain.RoleOrganizer && answers.Preferences.Organizer == nil {
		return fmt.Errorf("%w: organizer preferences are missing", ErrSubmissionIncomplete)
	}
	return nil
}

// buildProfileUpdate merges basic profile, about and connectivity answers
// into the single payload written at stage 3.
func buildProfileUpdate(answers domain.Answers) domain.ProfileUpdate {
	p := domain.ProfileUpdate{
		DisplayName: answers.BasicProfile.DisplayName,
		Handle:      answers.BasicProfile.Handle,
		AvatarURL:   answers.BasicProfile.AvatarURL,
	}
	if answers.About != nil {
		if answers.About.Organization != "" {
			p.Organization = &answers.About.Organization
		}
		if answers.About.Bio != "" {
			p.Bio = &answers.About.Bio
		}
		p.Skills = answers.About.Skills
		if answers.About.ExperienceLevel != "" {
			p.ExperienceLevel = &answers.About.ExperienceLevel
		}
	}
	if answers.Connectivity != nil {
		p.Twitter = answers.Connectivity.Twitter
		p.LinkedIn = answers.Connectivity.LinkedIn
		p.Instagram = answers.Connectivity.Instagram
		p.Website = answers.Connectivity.Website
		p.PhoneNumber = answers.Connectivity.PhoneNumber
	}
	return p
}

// publishCompletionEvents pushes the role-granted and onboarded events.
// Errors are logged and swallowed; delivery is best-effort by design of the
// downstream cache refresh.
func (s *Service) publishCompletionEvents(userID string, role domain.Role, org *domain.Organization) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	granted := domain.RoleGrantedEvent{UserID: userID, Role: role, GrantedAt: now}
	if err := s.publisher.Publish(ctx, EventsExchange, "user.role.granted", granted); err != nil {
		log.Printf("WARN: failed to publish role granted event for user %s: %v", userID, err)
	}

	onboarded := domain.UserOnboardedEvent{UserID: userID, Role: role, CompletedAt: now}
	if org != nil {
		onboarded.OrganizationID = &org.ID
	}
	if err := s.publisher.Publish(ctx, EventsExchange, "user.onboarded", onboarded); err != nil {
		log.Printf("WARN: failed to publish onboarded event for user %s: %v", userID, err)
	}
}
