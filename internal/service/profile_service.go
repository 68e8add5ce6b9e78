package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/avolkov/cert-registry-api/internal/directory"
	"github.com/avolkov/cert-registry-api/internal/models"
	appErrors "github.com/avolkov/cert-registry-api/pkg/errors"
)

// ProfileService manages the mutable profile overlay on top of the static
// directory.
type ProfileService struct {
	dir           *directory.Directory
	profiles      ProfileStore
	defaultModule string
	validate      *validator.Validate
	logger        *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(dir *directory.Directory, profiles ProfileStore, defaultModule string, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		dir:           dir,
		profiles:      profiles,
		defaultModule: defaultModule,
		validate:      validator.New(),
		logger:        logger,
	}
}

// EnsureSeeded creates default profiles for every directory user that has
// none. Idempotent; runs on every start.
func (s *ProfileService) EnsureSeeded(ctx context.Context) error {
	if err := s.profiles.Seed(ctx, s.dir.All(), s.defaultModule); err != nil {
		return err
	}
	s.logger.Info("profile seeding complete")
	return nil
}

// Resolve merges the directory entry with the stored overlay. A missing
// profile is not an error; the directory entry alone is returned.
func (s *ProfileService) Resolve(ctx context.Context, userID int) (*models.DisplayUser, error) {
	user := s.dir.Get(userID)
	if user == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load profile")
	}
	display := models.MergeProfile(*user, profile)
	return &display, nil
}

// Save replaces the caller's profile overlay wholesale. The manager link must
// point at an existing directory user other than the caller. Non-HR callers
// cannot grant themselves a controlled module; their stored value is kept.
func (s *ProfileService) Save(ctx context.Context, viewer models.DisplayUser, req models.ProfileUpdateRequest) (*models.DisplayUser, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if req.ManagerID != nil {
		if *req.ManagerID == viewer.ID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "manager cannot be yourself")
		}
		if s.dir.Get(*req.ManagerID) == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "manager not found")
		}
	}

	controlled := req.ControlledModule
	if viewer.Role != models.RoleHR {
		controlled = viewer.ControlledModule
	}

	profile := &models.Profile{
		UserID:           viewer.ID,
		FullName:         req.FullName,
		Position:         req.Position,
		Module:           req.Module,
		ManagerID:        req.ManagerID,
		ControlledModule: controlled,
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "save profile")
	}

	return s.Resolve(ctx, viewer.ID)
}

// GroupedForLogin lists directory users grouped by role for the login picker.
func (s *ProfileService) GroupedForLogin() []directory.RoleGroup {
	return s.dir.GroupedForLogin()
}

// ListDisplayUsers returns every directory user with its overlay applied, for
// examiner and manager selection.
func (s *ProfileService) ListDisplayUsers(ctx context.Context) ([]models.DisplayUser, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list profiles")
	}
	byID := make(map[int]*models.Profile, len(profiles))
	for i := range profiles {
		byID[profiles[i].UserID] = &profiles[i]
	}

	users := s.dir.All()
	out := make([]models.DisplayUser, 0, len(users))
	for _, u := range users {
		out = append(out, models.MergeProfile(u, byID[u.ID]))
	}
	return out, nil
}
