/**
 * @description
 * Data access for the organization directory: creation during organizer
 * submission, membership join requests, and the search backing the
 * organization-setup step.
 */
package store

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventra/onboarding-service/internal/domain"
)

// PostgresOrganizationRepository is the PostgreSQL implementation of the
// organization directory.
type PostgresOrganizationRepository struct {
	db *pgxpool.Pool
}

// NewPostgresOrganizationRepository creates a new organization repository.
func NewPostgresOrganizationRepository(db *pgxpool.Pool) *PostgresOrganizationRepository {
	return &PostgresOrganizationRepository{db: db}
}

// CreateOrganization inserts a new organization owned by the given user and
// returns the stored record. A slug collision surfaces as ErrSlugTaken so
// the caller can send the user back to pick another.
func (r *PostgresOrganizationRepository) CreateOrganization(ctx context.Context, ownerID string, draft domain.OrganizationDraft) (*domain.Organization, error) {
	query := `
        INSERT INTO organizations (name, slug, category, description, website, contact_email, owner_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, name, slug, category, description, website, contact_email, owner_id, created_at
    `
	var org domain.Organization
	err := r.db.QueryRow(ctx, query,
		draft.Name,
		draft.Slug,
		draft.Category,
		draft.Description,
		draft.Website,
		draft.ContactEmail,
		ownerID,
	).Scan(
		&org.ID,
		&org.Name,
		&org.Slug,
		&org.Category,
		&org.Description,
		&org.Website,
		&org.ContactEmail,
		&org.OwnerID,
		&org.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrSlugTaken
		}
		log.Printf("Error creating organization %q: %v", draft.Slug, err)
		return nil, err
	}
	return &org, nil
}

// RequestJoin records a pending membership request. Keyed by
// (organization, user) so a retried submission does not duplicate it.
func (r *PostgresOrganizationRepository) RequestJoin(ctx context.Context, orgID, userID string) error {
	if _, err := uuid.Parse(orgID); err != nil {
		return ErrOrganizationNotFound
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM organizations WHERE id = $1)`, orgID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrOrganizationNotFound
	}

	query := `
        INSERT INTO organization_join_requests (organization_id, user_id, status, requested_at)
        VALUES ($1, $2, 'pending', NOW())
        ON CONFLICT (organization_id, user_id) DO NOTHING
    `
	if _, err := r.db.Exec(ctx, query, orgID, userID); err != nil {
		log.Printf("Error recording join request for org %s user %s: %v", orgID, userID, err)
		return err
	}
	return nil
}

// SearchOrganizations returns directory entries matching the query by name
// or slug, most recent first.
func (r *PostgresOrganizationRepository) SearchOrganizations(ctx context.Context, query string) ([]domain.Organization, error) {
	sql := `
        SELECT id, name, slug, category, description, website, contact_email, owner_id, created_at
        FROM organizations
        WHERE name ILIKE '%' || $1 || '%' OR slug ILIKE '%' || $1 || '%'
        ORDER BY created_at DESC
        LIMIT 20
    `
	rows, err := r.db.Query(ctx, sql, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []domain.Organization
	for rows.Next() {
		var org domain.Organization
		if err := rows.Scan(
			&org.ID,
			&org.Name,
			&org.Slug,
			&org.Category,
			&org.Description,
			&org.Website,
			&org.ContactEmail,
			&org.OwnerID,
			&org.CreatedAt,
		); err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

// GetOrganizationBySlug fetches a single directory entry.
func (r *PostgresOrganizationRepository) GetOrganizationBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	query := `
        SELECT id, name, slug, category, description, website, contact_email, owner_id, created_at
        FROM organizations
        WHERE slug = $1
    `
	var org domain.Organization
	err := r.db.QueryRow(ctx, query, slug).Scan(
		&org.ID,
		&org.Name,
		&org.Slug,
		&org.Category,
		&org.Description,
		&org.Website,
		&org.ContactEmail,
		&org.OwnerID,
		&org.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}
	return &org, nil
}

// ExpireStaleJoinRequests marks pending join requests older than the given
// age as expired. Run by the maintenance sweeper.
func (r *PostgresOrganizationRepository) ExpireStaleJoinRequests(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
        UPDATE organization_join_requests
        SET status = 'expired'
        WHERE status = 'pending' AND requested_at < NOW() - make_interval(hours => $1)
    `
	tag, err := r.db.Exec(ctx, query, int(olderThan.Hours()))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
