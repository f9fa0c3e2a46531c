package user

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, usr User) error {
	const q = `
	INSERT INTO users (user_id, email, password_hash, created_at, updated_at)
	VALUES (:user_id, :email, :password_hash, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, usr); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

func CreateProfile(ctx context.Context, db sqlx.ExtContext, prf Profile) error {
	const q = `
	INSERT INTO profiles (profile_id, user_id, full_name, avatar_url, created_at)
	VALUES (:profile_id, :user_id, :full_name, :avatar_url, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, prf); err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}

	return nil
}

func SetRole(ctx context.Context, db sqlx.ExtContext, userID string, role string) error {
	const q = `
	INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
	ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role`

	if _, err := db.ExecContext(ctx, q, userID, role); err != nil {
		return fmt.Errorf("setting role: %w", err)
	}

	return nil
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	const q = `SELECT * FROM users WHERE email = $1`

	var usr User
	if err := sqlx.GetContext(ctx, db, &usr, q, email); err != nil {
		return User{}, fmt.Errorf("fetching user by email: %w", err)
	}

	return usr, nil
}

func FetchRole(ctx context.Context, db sqlx.ExtContext, userID string) (string, error) {
	const q = `SELECT role FROM user_roles WHERE user_id = $1`

	var role string
	if err := sqlx.GetContext(ctx, db, &role, q, userID); err != nil {
		return "", fmt.Errorf("fetching role: %w", err)
	}

	return role, nil
}

// FetchProfile returns the user's profile joined with its role, defaulting
// to "user" when no role row exists. The storefront gates admin pages on
// the role, so the current-user endpoint must carry it.
func FetchProfile(ctx context.Context, db sqlx.ExtContext, userID string) (ProfileWithRole, error) {
	const q = `
	SELECT p.*, COALESCE(r.role, 'user') AS role
	FROM profiles p
	LEFT JOIN user_roles r ON r.user_id = p.user_id
	WHERE p.user_id = $1`

	var prf ProfileWithRole
	if err := sqlx.GetContext(ctx, db, &prf, q, userID); err != nil {
		return ProfileWithRole{}, fmt.Errorf("fetching profile: %w", err)
	}

	return prf, nil
}

func ListProfiles(ctx context.Context, db sqlx.ExtContext) ([]ProfileWithRole, error) {
	const q = `
	SELECT p.*, COALESCE(r.role, 'user') AS role
	FROM profiles p
	LEFT JOIN user_roles r ON r.user_id = p.user_id
	ORDER BY p.created_at DESC`

	prfs := []ProfileWithRole{}
	if err := sqlx.SelectContext(ctx, db, &prfs, q); err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}

	return prfs, nil
}
