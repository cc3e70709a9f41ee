package flow

import (
	"testing"

	"github.com/eventra/onboarding-service/internal/domain"
)

func rolePtr(r domain.Role) *domain.Role { return &r }

func TestStepsFor_UnsetRoleHasSingleStep(t *testing.T) {
	steps := StepsFor(nil)
	if len(steps) != 1 {
		t.Fatalf("expected 1 step with no role, got %d", len(steps))
	}
	if steps[0] != domain.StepRoleSelection {
		t.Fatalf("expected role selection, got %q", steps[0])
	}
}

func TestStepsFor_BranchesOnThirdStep(t *testing.T) {
	attendee := StepsFor(rolePtr(domain.RoleAttendee))
	organizer := StepsFor(rolePtr(domain.RoleOrganizer))

	if len(attendee) != 5 || len(organizer) != 5 {
		t.Fatalf("expected 5 steps per branch, got %d and %d", len(attendee), len(organizer))
	}
	if attendee[2] != domain.StepAbout {
		t.Fatalf("expected attendee third step to be about, got %q", attendee[2])
	}
	if organizer[2] != domain.StepOrganizationSetup {
		t.Fatalf("expected organizer third step to be organization setup, got %q", organizer[2])
	}
	for i, step := range attendee {
		if i == 2 {
			continue
		}
		if organizer[i] != step {
			t.Fatalf("branches diverge at step %d: %q vs %q", i, step, organizer[i])
		}
	}
}

func TestGoTo_ClampsOutOfRangeIndices(t *testing.T) {
	f := &Flow{Answers: domain.Answers{Role: rolePtr(domain.RoleAttendee)}}

	f.GoTo(99)
	if f.StepIndex != 4 {
		t.Fatalf("expected goTo(99) to clamp to 4, got %d", f.StepIndex)
	}

	f.GoTo(-3)
	if f.StepIndex != 0 {
		t.Fatalf("expected goTo(-3) to clamp to 0, got %d", f.StepIndex)
	}
}

func TestNavigation_IndexStaysInBounds(t *testing.T) {
	f := &Flow{Answers: domain.Answers{Role: rolePtr(domain.RoleOrganizer)}}

	moves := []func(){f.Next, f.Next, f.Prev, f.Next, f.Next, f.Next, f.Next, f.Prev, func() { f.GoTo(7) }, func() { f.GoTo(-1) }}
	for i, move := range moves {
		move()
		if f.StepIndex < 0 || f.StepIndex >= f.TotalSteps() {
			t.Fatalf("index %d out of bounds after move %d", f.StepIndex, i)
		}
	}
}

func TestNavigation_ClampsToSingleStepWhileRoleUnset(t *testing.T) {
	f := &Flow{}

	f.Next()
	if f.StepIndex != 0 {
		t.Fatalf("expected next with unset role to stay on 0, got %d", f.StepIndex)
	}
	if f.TotalSteps() != 1 {
		t.Fatalf("expected 1 total step with unset role, got %d", f.TotalSteps())
	}
}

func TestApply_ReplacesWholeValueForStep(t *testing.T) {
	f := &Flow{}
	if err := f.Apply(domain.StepPayload{Step: domain.StepRoleSelection, Role: rolePtr(domain.RoleAttendee)}); err != nil {
		t.Fatalf("unexpected error setting role: %v", err)
	}

	first := domain.StepPayload{
		Step:  domain.StepAbout,
		About: &domain.AttendeeAbout{Bio: "first bio", Skills: []string{"logistics"}},
	}
	if err := f.Apply(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := domain.StepPayload{
		Step:  domain.StepAbout,
		About: &domain.AttendeeAbout{Bio: "second bio"},
	}
	if err := f.Apply(second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.Answers.About.Bio != "second bio" {
		t.Fatalf("expected later apply to replace the bio, got %q", f.Answers.About.Bio)
	}
	if len(f.Answers.About.Skills) != 0 {
		t.Fatal("expected later apply to fully replace the step value, skills survived")
	}
}

func TestApply_RejectsRoleChangeMidFlow(t *testing.T) {
	f := &Flow{}
	if err := f.Apply(domain.StepPayload{Step: domain.StepRoleSelection, Role: rolePtr(domain.RoleAttendee)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := f.Apply(domain.StepPayload{Step: domain.StepRoleSelection, Role: rolePtr(domain.RoleOrganizer)})
	if err != ErrRoleAlreadySet {
		t.Fatalf("expected ErrRoleAlreadySet, got %v", err)
	}

	// Re-selecting the same role is a no-op, not an error.
	if err := f.Apply(domain.StepPayload{Step: domain.StepRoleSelection, Role: rolePtr(domain.RoleAttendee)}); err != nil {
		t.Fatalf("expected same-role reselection to succeed, got %v", err)
	}
}

func TestApply_RejectsPreferencesShapeMismatch(t *testing.T) {
	f := &Flow{}
	if err := f.Apply(domain.StepPayload{Step: domain.StepRoleSelection, Role: rolePtr(domain.RoleOrganizer)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := f.Apply(domain.StepPayload{
		Step:        domain.StepPreferences,
		Preferences: &domain.Preferences{Attendee: &domain.AttendeePreferences{NotificationCadence: "weekly"}},
	})
	if err == nil {
		t.Fatal("expected attendee preferences to be rejected for an organizer flow")
	}
}
