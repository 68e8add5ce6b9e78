package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/avolkov/cert-registry-api/internal/models"
	"github.com/avolkov/cert-registry-api/internal/workflow"
	appErrors "github.com/avolkov/cert-registry-api/pkg/errors"
)

// CertificateRepository manages persistence for certificates. It knows nothing
// about roles; the only authorization rule it owns is the module guard shared
// by the HR mutations.
type CertificateRepository struct {
	db            *sqlx.DB
	defaultModule string
}

// NewCertificateRepository constructs a CertificateRepository.
func NewCertificateRepository(db *sqlx.DB, defaultModule string) *CertificateRepository {
	return &CertificateRepository{db: db, defaultModule: defaultModule}
}

const certColumns = `id, owner_id, name, cert_type, topic, issued_at, expires_at, created_at,
	workflow_status, required_examiner_id, required_examiner_name, exam_grade, exam_date,
	snapshot_full_name, snapshot_position, snapshot_module, snapshot_manager_id, snapshot_manager_name,
	revoked_by_id, revoked_by_name, revoked_reason, revoked_at`

// Create inserts a new certificate and returns the persisted row.
func (r *CertificateRepository) Create(ctx context.Context, cert *models.Certificate) (*models.Certificate, error) {
	const query = `INSERT INTO certificates (
			owner_id, name, cert_type, topic, issued_at, expires_at,
			workflow_status, required_examiner_id, required_examiner_name,
			snapshot_full_name, snapshot_position, snapshot_module,
			snapshot_manager_id, snapshot_manager_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + certColumns
	var created models.Certificate
	err := r.db.GetContext(ctx, &created, query,
		cert.OwnerID, cert.Name, cert.CertType, cert.Topic, cert.IssuedAt, cert.ExpiresAt,
		cert.WorkflowStatus, cert.RequiredExaminerID, cert.RequiredExaminerName,
		cert.SnapshotFullName, cert.SnapshotPosition, cert.SnapshotModule,
		cert.SnapshotManagerID, cert.SnapshotManagerName,
	)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	return &created, nil
}

// FindByID fetches a certificate by id.
func (r *CertificateRepository) FindByID(ctx context.Context, id int64) (*models.Certificate, error) {
	query := `SELECT ` + certColumns + ` FROM certificates WHERE id = $1`
	var cert models.Certificate
	if err := r.db.GetContext(ctx, &cert, query, id); err != nil {
		return nil, err
	}
	return &cert, nil
}

// ListByOwner returns the owner's certificates, newest first.
func (r *CertificateRepository) ListByOwner(ctx context.Context, ownerID int) ([]models.Certificate, error) {
	query := `SELECT ` + certColumns + ` FROM certificates WHERE owner_id = $1 ORDER BY id DESC`
	var certs []models.Certificate
	if err := r.db.SelectContext(ctx, &certs, query, ownerID); err != nil {
		return nil, fmt.Errorf("list certificates by owner: %w", err)
	}
	return certs, nil
}

// ListByOwners returns certificates of a set of owners, newest first. An empty
// set short-circuits to an empty result without touching the database.
func (r *CertificateRepository) ListByOwners(ctx context.Context, ownerIDs []int) ([]models.Certificate, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+certColumns+` FROM certificates WHERE owner_id IN (?) ORDER BY id DESC`, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("list certificates by owners: %w", err)
	}
	query = r.db.Rebind(query)
	var certs []models.Certificate
	if err := r.db.SelectContext(ctx, &certs, query, args...); err != nil {
		return nil, fmt.Errorf("list certificates by owners: %w", err)
	}
	return certs, nil
}

// ListByModule returns certificates whose effective module matches, newest
// first. Rows without a snapshot module count against the registry default.
func (r *CertificateRepository) ListByModule(ctx context.Context, module string) ([]models.Certificate, error) {
	query := `SELECT ` + certColumns + ` FROM certificates
		WHERE COALESCE(NULLIF(snapshot_module, ''), $1) = $2 ORDER BY id DESC`
	var certs []models.Certificate
	if err := r.db.SelectContext(ctx, &certs, query, r.defaultModule, module); err != nil {
		return nil, fmt.Errorf("list certificates by module: %w", err)
	}
	return certs, nil
}

// ListExamRequests returns internal certificates awaiting the given examiner,
// newest first.
func (r *CertificateRepository) ListExamRequests(ctx context.Context, examinerID int) ([]models.Certificate, error) {
	query := `SELECT ` + certColumns + ` FROM certificates
		WHERE required_examiner_id = $1 AND cert_type = $2 AND workflow_status = $3
		ORDER BY id DESC`
	var certs []models.Certificate
	if err := r.db.SelectContext(ctx, &certs, query, examinerID, models.CertTypeInternal, models.StatusPendingExam); err != nil {
		return nil, fmt.Errorf("list exam requests: %w", err)
	}
	return certs, nil
}

// SetExamResult records grade, date and resulting status. Only the assigned
// examiner may write, and never onto a revoked certificate. The status is
// coerced to passed unless explicitly failed.
func (r *CertificateRepository) SetExamResult(ctx context.Context, certID int64, examinerID int, grade, examDate string, status models.WorkflowStatus) (*models.Certificate, error) {
	if status != models.StatusFailed {
		status = models.StatusPassed
	}
	return r.mutate(ctx, certID, func(tx *sqlx.Tx, cert *models.Certificate) error {
		if cert.Revoked() {
			return appErrors.Clone(appErrors.ErrForbidden, "certificate is revoked")
		}
		if cert.RequiredExaminerID == nil || *cert.RequiredExaminerID != examinerID {
			return appErrors.Clone(appErrors.ErrForbidden, "not the assigned examiner")
		}
		const query = `UPDATE certificates SET exam_grade = $1, exam_date = $2, workflow_status = $3 WHERE id = $4`
		_, err := tx.ExecContext(ctx, query, grade, examDate, status, certID)
		return err
	})
}

// Revoke marks the certificate revoked and stamps all four revocation fields.
// allowedModule restricts the mutation to the certificate's effective module.
func (r *CertificateRepository) Revoke(ctx context.Context, certID int64, hrID int, hrName, reason, allowedModule string) (*models.Certificate, error) {
	return r.mutate(ctx, certID, func(tx *sqlx.Tx, cert *models.Certificate) error {
		if err := r.moduleGuard(cert, allowedModule); err != nil {
			return err
		}
		const query = `UPDATE certificates SET workflow_status = $1,
			revoked_by_id = $2, revoked_by_name = $3, revoked_reason = $4, revoked_at = $5
			WHERE id = $6`
		_, err := tx.ExecContext(ctx, query, models.StatusRevoked, hrID, hrName, reason, time.Now().UTC(), certID)
		return err
	})
}

// errNoop signals that the mutation had nothing to do.
var errNoop = errors.New("noop")

// Unrevoke lifts a revocation: the prior workflow state is recomputed from the
// certificate's own type/grade/examiner fields and the four revocation fields
// are cleared together. Not-revoked certificates are returned unchanged.
func (r *CertificateRepository) Unrevoke(ctx context.Context, certID int64, hrID int, allowedModule string) (*models.Certificate, error) {
	return r.mutate(ctx, certID, func(tx *sqlx.Tx, cert *models.Certificate) error {
		if !cert.Revoked() {
			return errNoop
		}
		if err := r.moduleGuard(cert, allowedModule); err != nil {
			return err
		}
		const query = `UPDATE certificates SET workflow_status = $1,
			revoked_by_id = NULL, revoked_by_name = NULL, revoked_reason = NULL, revoked_at = NULL
			WHERE id = $2`
		_, err := tx.ExecContext(ctx, query, workflow.UnrevokeStatus(*cert), certID)
		return err
	})
}

// Update edits the presentational fields. Type, ownership and workflow fields
// are untouchable; topic is dropped for non-internal certificates.
func (r *CertificateRepository) Update(ctx context.Context, certID int64, name, issuedAt, expiresAt string, topic *string, allowedModule string) (*models.Certificate, error) {
	return r.mutate(ctx, certID, func(tx *sqlx.Tx, cert *models.Certificate) error {
		if err := r.moduleGuard(cert, allowedModule); err != nil {
			return err
		}
		if cert.CertType != models.CertTypeInternal {
			topic = nil
		}
		const query = `UPDATE certificates SET name = $1, issued_at = $2, expires_at = $3, topic = $4 WHERE id = $5`
		_, err := tx.ExecContext(ctx, query, name, issuedAt, expiresAt, topic, certID)
		return err
	})
}

// Delete permanently removes the certificate. There is no tombstone.
func (r *CertificateRepository) Delete(ctx context.Context, certID int64, allowedModule string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete certificate: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	cert, err := fetchCertificate(ctx, tx, certID)
	if err != nil {
		return err
	}
	if err := r.moduleGuard(cert, allowedModule); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM certificates WHERE id = $1`, certID); err != nil {
		return fmt.Errorf("delete certificate: %w", err)
	}
	return tx.Commit()
}

// BackfillSnapshot fills the snapshot columns of a certificate created before
// snapshots existed. Only empty snapshots are written so a concurrent backfill
// cannot overwrite an already frozen one.
func (r *CertificateRepository) BackfillSnapshot(ctx context.Context, certID int64, fullName, position, module string, managerID *int, managerName *string) error {
	const query = `UPDATE certificates SET
			snapshot_full_name = $1, snapshot_position = $2, snapshot_module = $3,
			snapshot_manager_id = $4, snapshot_manager_name = $5
		WHERE id = $6 AND COALESCE(snapshot_full_name, '') = ''`
	if _, err := r.db.ExecContext(ctx, query, fullName, position, module, managerID, managerName, certID); err != nil {
		return fmt.Errorf("backfill snapshot: %w", err)
	}
	return nil
}

// moduleGuard is the single reusable scoping rule for HR mutations: when an
// allowed module is set, it must equal the certificate's effective module.
func (r *CertificateRepository) moduleGuard(cert *models.Certificate, allowedModule string) error {
	if allowedModule == "" {
		return nil
	}
	if cert.EffectiveModule(r.defaultModule) != allowedModule {
		return appErrors.Clone(appErrors.ErrForbidden, "certificate outside the controlled module")
	}
	return nil
}

// mutate runs a read-modify-write sequence on one certificate inside a single
// transaction and returns the resulting row.
func (r *CertificateRepository) mutate(ctx context.Context, certID int64, apply func(tx *sqlx.Tx, cert *models.Certificate) error) (*models.Certificate, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mutate certificate: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	cert, err := fetchCertificate(ctx, tx, certID)
	if err != nil {
		return nil, err
	}

	if err := apply(tx, cert); err != nil {
		if errors.Is(err, errNoop) {
			if commitErr := tx.Commit(); commitErr != nil {
				return nil, fmt.Errorf("mutate certificate: %w", commitErr)
			}
			return cert, nil
		}
		return nil, err
	}

	var updated models.Certificate
	if err := tx.GetContext(ctx, &updated, `SELECT `+certColumns+` FROM certificates WHERE id = $1`, certID); err != nil {
		return nil, fmt.Errorf("reload certificate: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("mutate certificate: %w", err)
	}
	return &updated, nil
}

func fetchCertificate(ctx context.Context, tx *sqlx.Tx, certID int64) (*models.Certificate, error) {
	var cert models.Certificate
	if err := tx.GetContext(ctx, &cert, `SELECT `+certColumns+` FROM certificates WHERE id = $1`, certID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, fmt.Errorf("load certificate: %w", err)
	}
	return &cert, nil
}
