package domain

import "time"

// RoleGrantedEvent is published after a successful submission so downstream
// services can refresh their role/permission caches. Delivery is best-effort.
type RoleGrantedEvent struct {
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	GrantedAt time.Time `json:"granted_at"`
}

// UserOnboardedEvent announces a completed onboarding, including the
// organization the user created or asked to join, when any.
type UserOnboardedEvent struct {
	UserID         string    `json:"user_id"`
	Role           Role      `json:"role"`
	OrganizationID *string   `json:"organization_id,omitempty"`
	CompletedAt    time.Time `json:"completed_at"`
}
