// internal/domain/models/userprofile.go
package models

import "time"

// UserProfile holds the application-level attributes of an identity.
// ID is the identity id issued by the identity provider (the token subject).
type UserProfile struct {
	ID        string     `bson:"_id" json:"id"`
	Email     string     `bson:"email" json:"email"`
	FirstName string     `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName  string     `bson:"last_name,omitempty" json:"last_name,omitempty"`
	AvatarURL string     `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Phone     string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Timezone  string     `bson:"timezone" json:"timezone"`
	IsActive  bool       `bson:"is_active" json:"is_active"`
	LastLogin *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// DefaultTimezone is assigned to profiles created on first authentication.
const DefaultTimezone = "UTC"

// FullName returns "First Last", whichever half is present, or the email.
func (p UserProfile) FullName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	case p.LastName != "":
		return p.LastName
	}
	return p.Email
}
