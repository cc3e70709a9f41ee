package domain

import (
	"errors"
	"fmt"
)

// ErrPayloadMismatch is returned when a step payload does not carry the
// answer shape its step identifier promises.
var ErrPayloadMismatch = errors.New("step payload does not match its step")

// StepPayload is the validated answer for exactly one step. The Step field
// discriminates which pointer is set; the validation layer guarantees the
// chosen shape is internally valid before it ever reaches the flow.
type StepPayload struct {
	Step              StepID             `json:"step"`
	Role              *Role              `json:"role,omitempty"`
	BasicProfile      *BasicProfile      `json:"basic_profile,omitempty"`
	About             *AttendeeAbout     `json:"about,omitempty"`
	OrganizationSetup *OrganizationSetup `json:"organization_setup,omitempty"`
	Connectivity      *Connectivity      `json:"connectivity,omitempty"`
	Preferences       *Preferences       `json:"preferences,omitempty"`
}

// Validate checks that the payload carries the shape its step identifier
// requires and nothing else that would be silently dropped.
func (p StepPayload) Validate() error {
	switch p.Step {
	case StepRoleSelection:
		if p.Role == nil || !p.Role.Valid() {
			return fmt.Errorf("%w: step %q requires a valid role", ErrPayloadMismatch, p.Step)
		}
	case StepBasicProfile:
		if p.BasicProfile == nil {
			return fmt.Errorf("%w: step %q requires a basic profile", ErrPayloadMismatch, p.Step)
		}
		if p.BasicProfile.DisplayName == "" || p.BasicProfile.Handle == "" {
			return fmt.Errorf("%w: display name and handle are required", ErrPayloadMismatch)
		}
	case StepAbout:
		if p.About == nil {
			return fmt.Errorf("%w: step %q requires about fields", ErrPayloadMismatch, p.Step)
		}
	case StepOrganizationSetup:
		if p.OrganizationSetup == nil {
			return fmt.Errorf("%w: step %q requires an organization setup choice", ErrPayloadMismatch, p.Step)
		}
		return p.OrganizationSetup.validate()
	case StepConnectivity:
		if p.Connectivity == nil {
			return fmt.Errorf("%w: step %q requires connectivity fields", ErrPayloadMismatch, p.Step)
		}
	case StepPreferences:
		if p.Preferences == nil {
			return fmt.Errorf("%w: step %q requires preferences", ErrPayloadMismatch, p.Step)
		}
		if (p.Preferences.Attendee == nil) == (p.Preferences.Organizer == nil) {
			return fmt.Errorf("%w: preferences must carry exactly one role shape", ErrPayloadMismatch)
		}
	default:
		return fmt.Errorf("%w: unknown step %q", ErrPayloadMismatch, p.Step)
	}
	return nil
}

func (s OrganizationSetup) validate() error {
	switch s.Action {
	case OrgSetupCreate:
		if s.Create == nil || s.Create.Name == "" || s.Create.Slug == "" {
			return fmt.Errorf("%w: create requires organization name and slug", ErrPayloadMismatch)
		}
	case OrgSetupJoin:
		if s.Join == nil || s.Join.OrganizationID == "" {
			return fmt.Errorf("%w: join requires an organization id", ErrPayloadMismatch)
		}
	case OrgSetupSkip:
		// Nothing to carry.
	default:
		return fmt.Errorf("%w: unknown organization setup action %q", ErrPayloadMismatch, s.Action)
	}
	return nil
}
