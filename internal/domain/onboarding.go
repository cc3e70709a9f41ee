/**
 * @description
 * This file defines the core data structures for the onboarding flow: the
 * role branch, the step identifiers, the per-step answer shapes, and the
 * aggregate that accumulates them as the user moves through the wizard.
 */
package domain

import "time"

// Role is the account role chosen on the first step of the flow.
type Role string

const (
	RoleAttendee  Role = "attendee"
	RoleOrganizer Role = "organizer"
)

// Valid reports whether the role is one of the two supported roles.
func (r Role) Valid() bool {
	return r == RoleAttendee || r == RoleOrganizer
}

// StepID is the stable name of one page of the onboarding wizard.
type StepID string

const (
	StepRoleSelection     StepID = "role_selection"
	StepBasicProfile      StepID = "basic_profile"
	StepAbout             StepID = "about"
	StepOrganizationSetup StepID = "organization_setup"
	StepConnectivity      StepID = "connectivity"
	StepPreferences       StepID = "preferences"
)

// BasicProfile holds the identity fields collected on the second step.
type BasicProfile struct {
	DisplayName string `json:"display_name"`
	Handle      string `json:"handle"`
	AvatarURL   string `json:"avatar_url"`
}

// AttendeeAbout is the attendee-shaped "about you" step.
type AttendeeAbout struct {
	Organization    string   `json:"organization"`
	Bio             string   `json:"bio"`
	Skills          []string `json:"skills"`
	ExperienceLevel string   `json:"experience_level"`
}

// OrgSetupAction discriminates the organizer's organization-setup choice.
type OrgSetupAction string

const (
	OrgSetupCreate OrgSetupAction = "create"
	OrgSetupJoin   OrgSetupAction = "join"
	OrgSetupSkip   OrgSetupAction = "skip"
)

// OrganizationDraft carries the fields for creating a new organization.
type OrganizationDraft struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	Website      string `json:"website"`
	ContactEmail string `json:"contact_email"`
}

// OrganizationRef points at an existing organization picked from search.
type OrganizationRef struct {
	OrganizationID   string `json:"organization_id"`
	OrganizationName string `json:"organization_name"`
}

// OrganizationSetup is the organizer's third step. Exactly one of Create or
// Join is set when Action is "create" or "join"; both are nil for "skip".
type OrganizationSetup struct {
	Action OrgSetupAction     `json:"action"`
	Create *OrganizationDraft `json:"create,omitempty"`
	Join   *OrganizationRef   `json:"join,omitempty"`
}

// Connectivity holds the optional social links and phone number. Every field
// is nullable; a skipped step writes all of them as NULL on commit.
type Connectivity struct {
	Twitter     *string `json:"twitter"`
	LinkedIn    *string `json:"linkedin"`
	Instagram   *string `json:"instagram"`
	Website     *string `json:"website"`
	PhoneNumber *string `json:"phone_number"`
}

// AttendeePreferences is the attendee-shaped final step.
type AttendeePreferences struct {
	EventInterests      []string `json:"event_interests"`
	LookingFor          []string `json:"looking_for"`
	NotificationCadence string   `json:"notification_cadence"`
}

// OrganizerPreferences is the organizer-shaped final step.
type OrganizerPreferences struct {
	ExpectedEventTypes []string `json:"expected_event_types"`
	TeamSize           string   `json:"team_size"`
}

// Preferences is the role-discriminated final-step payload. Exactly one of
// the two fields is set, matching the role chosen on step 0.
type Preferences struct {
	Attendee  *AttendeePreferences  `json:"attendee,omitempty"`
	Organizer *OrganizerPreferences `json:"organizer,omitempty"`
}

// Answers is the aggregate of every answer collected so far. Fields stay nil
// until their step completes; the role selects which of the role-shaped
// fields may be populated.
type Answers struct {
	Role              *Role              `json:"role"`
	BasicProfile      *BasicProfile      `json:"basic_profile"`
	About             *AttendeeAbout     `json:"about"`
	OrganizationSetup *OrganizationSetup `json:"organization_setup"`
	Connectivity      *Connectivity      `json:"connectivity"`
	Preferences       *Preferences       `json:"preferences"`
}

// Organization is a directory entry, either pre-existing or freshly created
// during submission.
type Organization struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Website      string    `json:"website"`
	ContactEmail string    `json:"contact_email"`
	OwnerID      string    `json:"owner_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfileUpdate is the single merged payload written to the profile store at
// submission time. Nullable fields are written as NULL, not omitted, so a
// skipped step overwrites any previously stored value.
type ProfileUpdate struct {
	DisplayName     string
	Handle          string
	AvatarURL       string
	Organization    *string
	Bio             *string
	Skills          []string
	ExperienceLevel *string
	Twitter         *string
	LinkedIn        *string
	Instagram       *string
	Website         *string
	PhoneNumber     *string
}
