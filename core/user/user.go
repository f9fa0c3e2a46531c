package user

import "time"

type User struct {
	ID           string    `json:"id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

type Profile struct {
	ID        string    `json:"id" db:"profile_id"`
	UserID    string    `json:"userId" db:"user_id"`
	FullName  string    `json:"fullName" db:"full_name"`
	AvatarURL string    `json:"avatarUrl" db:"avatar_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ProfileWithRole is the admin listing view: profile joined with the
// user's role, defaulting to "user" when no role row exists.
type ProfileWithRole struct {
	Profile
	Role string `json:"role" db:"role"`
}
