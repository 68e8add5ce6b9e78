package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/avolkov/cert-registry-api/internal/models"
)

// ProfileRepository manages the mutable per-user profile overlay.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `user_id, full_name, position, module, manager_id, controlled_module`

// Get fetches a profile by user id.
func (r *ProfileRepository) Get(ctx context.Context, userID int) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id = $1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// List returns every profile.
func (r *ProfileRepository) List(ctx context.Context) ([]models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles`
	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// Upsert replaces the profile wholesale; there is no partial patch.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	const query = `INSERT INTO user_profiles (user_id, full_name, position, module, manager_id, controlled_module)
		VALUES (:user_id, :full_name, :position, :module, :manager_id, :controlled_module)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			position = EXCLUDED.position,
			module = EXCLUDED.module,
			manager_id = EXCLUDED.manager_id,
			controlled_module = EXCLUDED.controlled_module`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("upsert profile %d: %w", profile.UserID, err)
	}
	return nil
}

// Seed inserts a default profile per directory user unless one already exists.
// Position defaults to the role label, module to the registry default, and HR
// users get the default module as their controlled module. Idempotent; the
// ON CONFLICT clause keeps concurrent cold starts from double-inserting.
func (r *ProfileRepository) Seed(ctx context.Context, users []models.User, defaultModule string) error {
	const query = `INSERT INTO user_profiles (user_id, full_name, position, module, manager_id, controlled_module)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO NOTHING`
	for _, u := range users {
		var controlled *string
		if u.Role == models.RoleHR {
			m := defaultModule
			controlled = &m
		}
		if _, err := r.db.ExecContext(ctx, query, u.ID, u.FullName, u.Role.Label(), defaultModule, u.ManagerID, controlled); err != nil {
			return fmt.Errorf("seed profile %d: %w", u.ID, err)
		}
	}
	return nil
}
