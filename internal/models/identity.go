package models

import "time"

// Roles assignable to an identity.
const (
	RoleTrainee = "trainee"
	RoleAdmin   = "admin"
)

// Identity is a person usable as a trainee or administrator. The UID is
// assigned by the identity provider and never changes; the profile document
// in the users collection is keyed by it.
type Identity struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// IdentityFromDoc builds an Identity from a users collection document.
func IdentityFromDoc(uid string, d map[string]any) Identity {
	return Identity{
		UID:         uid,
		Email:       docString(d, "email"),
		DisplayName: docString(d, "displayName"),
		Role:        docString(d, "role"),
		CreatedAt:   docTime(d, "createdAt"),
		UpdatedAt:   docTime(d, "updatedAt"),
	}
}
