/**
 * @description
 * The in-memory state of one onboarding attempt: the answer aggregate plus
 * the current step index, with clamped navigation over the role-resolved
 * step sequence. Callers persist the flow after every mutation; this type
 * itself never talks to storage.
 */
package flow

import (
	"errors"
	"fmt"

	"github.com/eventra/onboarding-service/internal/domain"
)

// ErrRoleAlreadySet is returned when a role-selection payload tries to
// change an already chosen role. Changing roles mid-flow is not supported;
// the flow must be abandoned and restarted instead.
var ErrRoleAlreadySet = errors.New("role is already set for this flow")

// Flow is the unit of state the wizard operates on. The zero value is a
// fresh flow positioned on the role-selection step.
type Flow struct {
	Answers   domain.Answers `json:"answers"`
	StepIndex int            `json:"step_index"`
}

// Steps returns the ordered step identifiers for the flow's current role.
func (f *Flow) Steps() []domain.StepID {
	return StepsFor(f.Answers.Role)
}

// TotalSteps returns the number of steps in the flow's current branch.
func (f *Flow) TotalSteps() int {
	return len(f.Steps())
}

// CurrentStep returns the identifier of the step the flow is on.
func (f *Flow) CurrentStep() domain.StepID {
	return f.Steps()[f.StepIndex]
}

// Next advances one step, clamped to the last index.
func (f *Flow) Next() {
	f.GoTo(f.StepIndex + 1)
}

// Prev moves back one step, clamped to zero.
func (f *Flow) Prev() {
	f.GoTo(f.StepIndex - 1)
}

// GoTo jumps to the given index, clamped to [0, TotalSteps-1]. The sequencer
// does not re-check the role guard on forward jumps; step components gate
// their own continue actions on validation before navigating.
func (f *Flow) GoTo(index int) {
	max := f.TotalSteps() - 1
	if index < 0 {
		index = 0
	}
	if index > max {
		index = max
	}
	f.StepIndex = index
}

// Apply replaces exactly one top-level field of the aggregate with the
// payload's answer. A later Apply for the same step fully replaces the
// earlier value; there is no merging within a step's object.
func (f *Flow) Apply(p domain.StepPayload) error {
	if err := p.Validate(); err != nil {
		return err
	}

	switch p.Step {
	case domain.StepRoleSelection:
		if f.Answers.Role != nil && *f.Answers.Role != *p.Role {
			return ErrRoleAlreadySet
		}
		f.Answers.Role = p.Role
	case domain.StepBasicProfile:
		f.Answers.BasicProfile = p.BasicProfile
	case domain.StepAbout:
		f.Answers.About = p.About
	case domain.StepOrganizationSetup:
		f.Answers.OrganizationSetup = p.OrganizationSetup
	case domain.StepConnectivity:
		f.Answers.Connectivity = p.Connectivity
	case domain.StepPreferences:
		if err := f.checkPreferencesShape(p.Preferences); err != nil {
			return err
		}
		f.Answers.Preferences = p.Preferences
	default:
		return fmt.Errorf("%w: unknown step %q", domain.ErrPayloadMismatch, p.Step)
	}
	return nil
}

// checkPreferencesShape rejects a preferences payload whose role shape does
// not match the role chosen on step 0.
func (f *Flow) checkPreferencesShape(prefs *domain.Preferences) error {
	role := f.Answers.Role
	if role == nil {
		return fmt.Errorf("%w: preferences require a role to be set", domain.ErrPayloadMismatch)
	}
	if *role == domain.RoleAttendee && prefs.Attendee == nil {
		return fmt.Errorf("%w: attendee flow requires attendee preferences", domain.ErrPayloadMismatch)
	}
	if *role == domain.RoleOrganizer && prefs.Organizer == nil {
		return fmt.Errorf("%w: organizer flow requires organizer preferences", domain.ErrPayloadMismatch)
	}
	return nil
}
