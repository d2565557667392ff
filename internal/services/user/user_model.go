package user

import "time"

// User is the local mirror of the identity provider's view of a user. The ID
// is the provider subject and is the sole capability token for task
// ownership checks. The mirror is display state; credentials live with the
// provider.
type User struct {
	ID            string    `db:"id" json:"id"`
	Username      string    `db:"username" json:"username"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	EmailVerified bool      `db:"email_verified" json:"email_verified"`
	Role          string    `db:"role" json:"role"`
	Permissions   string    `db:"permissions" json:"permissions"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// UpdateProfileRequest captures payload for profile changes. Nil fields are
// left untouched.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}
