package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/avolkov/cert-registry-api/internal/directory"
	"github.com/avolkov/cert-registry-api/internal/models"
	"github.com/avolkov/cert-registry-api/internal/workflow"
	"github.com/avolkov/cert-registry-api/pkg/config"
	appErrors "github.com/avolkov/cert-registry-api/pkg/errors"
)

const dateLayout = "2006-01-02"

const (
	teamCacheModuleKey  = "team:module:%s"
	teamCacheManagerKey = "team:manager:%d"
	teamCachePattern    = "team:*"
)

// CertificateService implements the registry operations: issuance with profile
// snapshots, the exam workflow, HR administration and scoped listings.
type CertificateService struct {
	certs    CertificateStore
	profiles ProfileStore
	cache    Cache
	dir      *directory.Directory
	cfg      config.RegistryConfig
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewCertificateService constructs a CertificateService.
func NewCertificateService(certs CertificateStore, profiles ProfileStore, cache Cache, dir *directory.Directory, cfg config.RegistryConfig, logger *zap.Logger) *CertificateService {
	return &CertificateService{
		certs:    certs,
		profiles: profiles,
		cache:    cache,
		dir:      dir,
		cfg:      cfg,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// Create registers a certificate for the viewer. The viewer's current profile
// is frozen into the snapshot fields; internal certificates get their exam
// assigned to the owner's manager and start in the exam queue.
func (s *CertificateService) Create(ctx context.Context, viewer models.DisplayUser, req models.CreateCertificateRequest) (*models.Certificate, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if !req.CertType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cert_type must be external or internal")
	}
	if err := validateDate(req.IssuedAt, true); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "issued_at must be YYYY-MM-DD")
	}
	if req.IsPerpetual {
		req.ExpiresAt = ""
	}
	if err := validateDate(req.ExpiresAt, false); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "expires_at must be YYYY-MM-DD")
	}
	if req.CertType == models.CertTypeInternal && (req.Topic == nil || *req.Topic == "") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "topic is required for internal certificate")
	}

	cert := &models.Certificate{
		OwnerID:        viewer.ID,
		Name:           req.Name,
		CertType:       req.CertType,
		IssuedAt:       req.IssuedAt,
		ExpiresAt:      req.ExpiresAt,
		WorkflowStatus: workflow.InitialStatus(req.CertType),
	}

	s.applySnapshot(ctx, cert, viewer)

	// The exam goes to the owner's manager as recorded in the snapshot.
	if req.CertType == models.CertTypeInternal {
		cert.Topic = req.Topic
		cert.RequiredExaminerID = cert.SnapshotManagerID
		cert.RequiredExaminerName = cert.SnapshotManagerName
	}

	created, err := s.certs.Create(ctx, cert)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create certificate")
	}

	s.invalidateTeamCache(ctx)
	s.logger.Info("certificate created",
		zap.Int64("certificate_id", created.ID),
		zap.Int("owner_id", created.OwnerID),
		zap.String("cert_type", string(created.CertType)))

	workflow.Decorate(created, s.now())
	return created, nil
}

// Get loads one certificate for an authorized viewer. Certificates that
// predate snapshots get their snapshot backfilled from the owner's current
// profile on first read.
func (s *CertificateService) Get(ctx context.Context, viewer models.DisplayUser, certID int64) (*models.Certificate, error) {
	cert, err := s.load(ctx, certID)
	if err != nil {
		return nil, err
	}

	descendants, err := s.descendantSet(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	if !workflow.CanView(viewer, *cert, descendants, s.cfg.DefaultModule) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no access to this certificate")
	}

	s.backfillSnapshot(ctx, cert)
	workflow.Decorate(cert, s.now())
	return cert, nil
}

// ListMine returns the viewer's own certificates, decorated, newest first.
func (s *CertificateService) ListMine(ctx context.Context, viewer models.DisplayUser) ([]models.Certificate, error) {
	certs, err := s.certs.ListByOwner(ctx, viewer.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list certificates")
	}
	return s.decorateAll(certs), nil
}

// ListExamRequests returns internal certificates queued for the viewer as
// examiner.
func (s *CertificateService) ListExamRequests(ctx context.Context, viewer models.DisplayUser) ([]models.Certificate, error) {
	certs, err := s.certs.ListExamRequests(ctx, viewer.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list exam requests")
	}
	return s.decorateAll(certs), nil
}

// ListTeam returns the certificates the viewer oversees: HR sees its
// controlled module, managers see their transitive subordinates, everyone
// else sees an empty list. Results are cached briefly; decoration happens
// after the cache so derived statuses stay current.
func (s *CertificateService) ListTeam(ctx context.Context, viewer models.DisplayUser) ([]models.Certificate, error) {
	var key string
	if viewer.Role == models.RoleHR {
		key = fmt.Sprintf(teamCacheModuleKey, workflow.AllowedModule(viewer, s.cfg.DefaultModule))
	} else {
		key = fmt.Sprintf(teamCacheManagerKey, viewer.ID)
	}

	var certs []models.Certificate
	if err := s.cache.Get(ctx, key, &certs); err == nil {
		return s.decorateAll(certs), nil
	}

	var err error
	if viewer.Role == models.RoleHR {
		certs, err = s.certs.ListByModule(ctx, workflow.AllowedModule(viewer, s.cfg.DefaultModule))
	} else {
		var ids []int
		ids, err = s.descendantIDs(ctx, viewer.ID)
		if err == nil {
			certs, err = s.certs.ListByOwners(ctx, ids)
		}
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list team certificates")
	}

	if cacheErr := s.cache.Set(ctx, key, certs, s.cfg.TeamCacheTTL); cacheErr != nil {
		s.logger.Warn("team cache write failed", zap.String("key", key), zap.Error(cacheErr))
	}
	return s.decorateAll(certs), nil
}

// SubmitExam records an exam outcome. Only the assigned examiner may submit;
// the raw grade is normalized to a level label or the fail sentinel, and the
// certificate moves to passed or failed accordingly. A recorded result may be
// re-submitted until HR revokes the certificate.
func (s *CertificateService) SubmitExam(ctx context.Context, viewer models.DisplayUser, certID int64, req models.ExamResultRequest) (*models.Certificate, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	cert, err := s.load(ctx, certID)
	if err != nil {
		return nil, err
	}
	if !workflow.CanExamine(viewer.ID, *cert) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the assigned examiner may record a result")
	}

	grade := workflow.CanonicalGrade(req.Grade)
	if grade == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unrecognized grade")
	}
	examDate := req.ExamDate
	if examDate == "" {
		examDate = s.now().UTC().Format(dateLayout)
	} else if err := validateDate(examDate, true); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exam_date must be YYYY-MM-DD")
	}

	updated, err := s.certs.SetExamResult(ctx, certID, viewer.ID, grade, examDate, workflow.ExamOutcome(grade))
	if err != nil {
		return nil, err
	}

	s.invalidateTeamCache(ctx)
	s.logger.Info("exam result recorded",
		zap.Int64("certificate_id", certID),
		zap.Int("examiner_id", viewer.ID),
		zap.String("status", string(updated.WorkflowStatus)))

	workflow.Decorate(updated, s.now())
	return updated, nil
}

// Revoke withdraws a certificate. HR only; the store enforces the module
// guard against the viewer's controlled module.
func (s *CertificateService) Revoke(ctx context.Context, viewer models.DisplayUser, certID int64, req models.RevokeRequest) (*models.Certificate, error) {
	if !workflow.CanAdminister(viewer) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only HR may revoke certificates")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	updated, err := s.certs.Revoke(ctx, certID, viewer.ID, viewer.FullName, req.Reason, workflow.AllowedModule(viewer, s.cfg.DefaultModule))
	if err != nil {
		return nil, err
	}

	s.invalidateTeamCache(ctx)
	s.logger.Info("certificate revoked", zap.Int64("certificate_id", certID), zap.Int("hr_id", viewer.ID))

	workflow.Decorate(updated, s.now())
	return updated, nil
}

// Unrevoke lifts a revocation. HR only; no-op when the certificate is not
// revoked.
func (s *CertificateService) Unrevoke(ctx context.Context, viewer models.DisplayUser, certID int64) (*models.Certificate, error) {
	if !workflow.CanAdminister(viewer) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only HR may restore certificates")
	}

	updated, err := s.certs.Unrevoke(ctx, certID, viewer.ID, workflow.AllowedModule(viewer, s.cfg.DefaultModule))
	if err != nil {
		return nil, err
	}

	s.invalidateTeamCache(ctx)
	s.logger.Info("certificate restored", zap.Int64("certificate_id", certID), zap.Int("hr_id", viewer.ID))

	workflow.Decorate(updated, s.now())
	return updated, nil
}

// Update edits a certificate's presentational fields. HR only.
func (s *CertificateService) Update(ctx context.Context, viewer models.DisplayUser, certID int64, req models.UpdateCertificateRequest) (*models.Certificate, error) {
	if !workflow.CanAdminister(viewer) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only HR may edit certificates")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if err := validateDate(req.IssuedAt, true); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "issued_at must be YYYY-MM-DD")
	}
	if req.IsPerpetual {
		req.ExpiresAt = ""
	}
	if err := validateDate(req.ExpiresAt, false); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "expires_at must be YYYY-MM-DD")
	}

	updated, err := s.certs.Update(ctx, certID, req.Name, req.IssuedAt, req.ExpiresAt, req.Topic, workflow.AllowedModule(viewer, s.cfg.DefaultModule))
	if err != nil {
		return nil, err
	}

	s.invalidateTeamCache(ctx)
	workflow.Decorate(updated, s.now())
	return updated, nil
}

// Delete permanently removes a certificate. HR only.
func (s *CertificateService) Delete(ctx context.Context, viewer models.DisplayUser, certID int64) error {
	if !workflow.CanAdminister(viewer) {
		return appErrors.Clone(appErrors.ErrForbidden, "only HR may delete certificates")
	}
	if err := s.certs.Delete(ctx, certID, workflow.AllowedModule(viewer, s.cfg.DefaultModule)); err != nil {
		return err
	}
	s.invalidateTeamCache(ctx)
	s.logger.Info("certificate deleted", zap.Int64("certificate_id", certID), zap.Int("hr_id", viewer.ID))
	return nil
}

// PublicStatus answers the unauthenticated verification check with the binary
// valid/invalid answer and nothing else.
func (s *CertificateService) PublicStatus(ctx context.Context, certID int64) (*models.PublicStatus, error) {
	cert, err := s.load(ctx, certID)
	if err != nil {
		return nil, err
	}
	status := workflow.PublicStatus(*cert, s.now())
	return &status, nil
}

// Resolve merges a directory user with its profile overlay.
func (s *CertificateService) Resolve(ctx context.Context, userID int) (*models.DisplayUser, error) {
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

func (s *CertificateService) load(ctx context.Context, certID int64) (*models.Certificate, error) {
	cert, err := s.certs.FindByID(ctx, certID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load certificate")
	}
	return cert, nil
}

// applySnapshot freezes the owner's current display profile into the
// certificate's snapshot fields.
func (s *CertificateService) applySnapshot(ctx context.Context, cert *models.Certificate, owner models.DisplayUser) {
	module := owner.Module
	if module == "" {
		module = s.cfg.DefaultModule
	}
	cert.SnapshotFullName = &owner.FullName
	cert.SnapshotPosition = &owner.Position
	cert.SnapshotModule = &module
	cert.SnapshotManagerID = owner.ManagerID
	if owner.ManagerID != nil {
		if manager, err := s.Resolve(ctx, *owner.ManagerID); err == nil {
			cert.SnapshotManagerName = &manager.FullName
		}
	}
}

// backfillSnapshot lazily fills snapshots on certificates that predate them.
// Failures are logged and swallowed; the read must still succeed.
func (s *CertificateService) backfillSnapshot(ctx context.Context, cert *models.Certificate) {
	if cert.SnapshotFullName != nil && *cert.SnapshotFullName != "" {
		return
	}
	owner, err := s.Resolve(ctx, cert.OwnerID)
	if err != nil {
		return
	}
	module := owner.Module
	if module == "" {
		module = s.cfg.DefaultModule
	}
	var managerName *string
	if owner.ManagerID != nil {
		if manager, resolveErr := s.Resolve(ctx, *owner.ManagerID); resolveErr == nil {
			managerName = &manager.FullName
		}
	}
	if err := s.certs.BackfillSnapshot(ctx, cert.ID, owner.FullName, owner.Position, module, owner.ManagerID, managerName); err != nil {
		s.logger.Warn("snapshot backfill failed", zap.Int64("certificate_id", cert.ID), zap.Error(err))
		return
	}
	cert.SnapshotFullName = &owner.FullName
	cert.SnapshotPosition = &owner.Position
	cert.SnapshotModule = &module
	cert.SnapshotManagerID = owner.ManagerID
	cert.SnapshotManagerName = managerName
}

// descendantIDs computes the viewer's transitive subordinates, honoring
// profile manager overrides.
func (s *CertificateService) descendantIDs(ctx context.Context, viewerID int) ([]int, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list profiles")
	}
	overrides := make(map[int]*int, len(profiles))
	for _, p := range profiles {
		overrides[p.UserID] = p.ManagerID
	}
	return s.dir.DescendantIDs(viewerID, overrides), nil
}

func (s *CertificateService) descendantSet(ctx context.Context, viewerID int) (map[int]bool, error) {
	ids, err := s.descendantIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *CertificateService) decorateAll(certs []models.Certificate) []models.Certificate {
	now := s.now()
	for i := range certs {
		workflow.Decorate(&certs[i], now)
	}
	return certs
}

func (s *CertificateService) invalidateTeamCache(ctx context.Context) {
	if err := s.cache.DeleteByPattern(ctx, teamCachePattern); err != nil {
		s.logger.Warn("team cache invalidation failed", zap.Error(err))
	}
}

func validateDate(raw string, required bool) error {
	if raw == "" {
		if required {
			return errors.New("date required")
		}
		return nil
	}
	_, err := time.Parse(dateLayout, raw)
	return err
}
