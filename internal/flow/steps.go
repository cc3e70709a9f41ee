/**
 * @description
 * Role branch resolution for the onboarding wizard. The step sequence is a
 * pure function of the selected role and is recomputed on every query, since
 * the role changes exactly once (at step 0) and nothing may cache a sequence
 * computed before that.
 */
package flow

import "github.com/eventra/onboarding-service/internal/domain"

// StepsFor returns the ordered step identifiers for the given role. Before a
// role is chosen the flow has a single step, the role selection itself. The
// two branches differ only at the third step: attendees describe themselves,
// organizers set up (or join, or skip) an organization.
func StepsFor(role *domain.Role) []domain.StepID {
	if role == nil {
		return []domain.StepID{domain.StepRoleSelection}
	}

	third := domain.StepAbout
	if *role == domain.RoleOrganizer {
		third = domain.StepOrganizationSetup
	}

	return []domain.StepID{
		domain.StepRoleSelection,
		domain.StepBasicProfile,
		third,
		domain.StepConnectivity,
		domain.StepPreferences,
	}
}
