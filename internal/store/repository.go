/**
 * @description
 * Shared error values for the data access layer. Handlers and the app layer
 * match on these to map storage failures to user-facing behavior.
 */
package store

import "errors"

var (
	// ErrOrganizationNotFound is returned when a join request references an
	// organization that does not exist.
	ErrOrganizationNotFound = errors.New("organization not found")

	// ErrSlugTaken is returned when creating an organization with a slug
	// that is already in use.
	ErrSlugTaken = errors.New("organization slug is already taken")
)
