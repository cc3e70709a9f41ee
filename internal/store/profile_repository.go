/**
 * @description
 * Data access for the identity side of submission: the merged profile
 * update, the preferences upsert and the role grant. All three writes are
 * idempotent so a retried submission repeats them safely.
 */
package store

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventra/onboarding-service/internal/domain"
)

// PostgresProfileRepository is the PostgreSQL implementation of the
// identity/profile store.
type PostgresProfileRepository struct {
	db *pgxpool.Pool
}

// NewPostgresProfileRepository creates a new profile repository.
func NewPostgresProfileRepository(db *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

// UpdateProfile writes the merged profile payload for a user. Nullable
// fields are written as NULL rather than skipped, so a step the user left
// blank overwrites whatever was stored before.
func (r *PostgresProfileRepository) UpdateProfile(ctx context.Context, userID string, p domain.ProfileUpdate) error {
	query := `
        INSERT INTO profiles (
            user_id, display_name, handle, avatar_url,
            organization, bio, skills, experience_level,
            twitter, linkedin, instagram, website, phone_number
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        ON CONFLICT (user_id) DO UPDATE SET
            display_name = EXCLUDED.display_name,
            handle = EXCLUDED.handle,
            avatar_url = EXCLUDED.avatar_url,
            organization = EXCLUDED.organization,
            bio = EXCLUDED.bio,
            skills = EXCLUDED.skills,
            experience_level = EXCLUDED.experience_level,
            twitter = EXCLUDED.twitter,
            linkedin = EXCLUDED.linkedin,
            instagram = EXCLUDED.instagram,
            website = EXCLUDED.website,
            phone_number = EXCLUDED.phone_number,
            updated_at = NOW()
    `
	_, err := r.db.Exec(ctx, query,
		userID,
		p.DisplayName,
		p.Handle,
		p.AvatarURL,
		p.Organization,
		p.Bio,
		p.Skills,
		p.ExperienceLevel,
		p.Twitter,
		p.LinkedIn,
		p.Instagram,
		p.Website,
		p.PhoneNumber,
	)
	if err != nil {
		log.Printf("Error updating profile for user %s: %v", userID, err)
		return err
	}
	return nil
}

// UpsertPreferences stores the role-specific preferences for a user. The
// columns of the other role's shape are written as NULL.
func (r *PostgresProfileRepository) UpsertPreferences(ctx context.Context, userID string, prefs domain.Preferences) error {
	var (
		eventInterests     []string
		lookingFor         []string
		cadence            *string
		expectedEventTypes []string
		teamSize           *string
	)
	if prefs.Attendee != nil {
		eventInterests = prefs.Attendee.EventInterests
		lookingFor = prefs.Attendee.LookingFor
		cadence = &prefs.Attendee.NotificationCadence
	}
	if prefs.Organizer != nil {
		expectedEventTypes = prefs.Organizer.ExpectedEventTypes
		teamSize = &prefs.Organizer.TeamSize
	}

	query := `
        INSERT INTO preferences (
            user_id, event_interests, looking_for, notification_cadence,
            expected_event_types, team_size
        )
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id) DO UPDATE SET
            event_interests = EXCLUDED.event_interests,
            looking_for = EXCLUDED.looking_for,
            notification_cadence = EXCLUDED.notification_cadence,
            expected_event_types = EXCLUDED.expected_event_types,
            team_size = EXCLUDED.team_size,
            updated_at = NOW()
    `
	_, err := r.db.Exec(ctx, query, userID, eventInterests, lookingFor, cadence, expectedEventTypes, teamSize)
	if err != nil {
		log.Printf("Error upserting preferences for user %s: %v", userID, err)
		return err
	}
	return nil
}

// UpsertRoleGrant records the user's role. Keyed by (user, role) so a
// repeated submission leaves the stored state unchanged.
func (r *PostgresProfileRepository) UpsertRoleGrant(ctx context.Context, userID string, role domain.Role) error {
	query := `
        INSERT INTO role_grants (user_id, role)
        VALUES ($1, $2)
        ON CONFLICT (user_id, role) DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, userID, string(role))
	if err != nil {
		log.Printf("Error upserting role grant for user %s: %v", userID, err)
		return err
	}
	return nil
}
