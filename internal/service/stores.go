package service

import (
	"context"
	"time"

	"github.com/avolkov/cert-registry-api/internal/models"
)

// CertificateStore is the persistence surface the services rely on.
type CertificateStore interface {
	Create(ctx context.Context, cert *models.Certificate) (*models.Certificate, error)
	FindByID(ctx context.Context, id int64) (*models.Certificate, error)
	ListByOwner(ctx context.Context, ownerID int) ([]models.Certificate, error)
	ListByOwners(ctx context.Context, ownerIDs []int) ([]models.Certificate, error)
	ListByModule(ctx context.Context, module string) ([]models.Certificate, error)
	ListExamRequests(ctx context.Context, examinerID int) ([]models.Certificate, error)
	SetExamResult(ctx context.Context, certID int64, examinerID int, grade, examDate string, status models.WorkflowStatus) (*models.Certificate, error)
	Revoke(ctx context.Context, certID int64, hrID int, hrName, reason, allowedModule string) (*models.Certificate, error)
	Unrevoke(ctx context.Context, certID int64, hrID int, allowedModule string) (*models.Certificate, error)
	Update(ctx context.Context, certID int64, name, issuedAt, expiresAt string, topic *string, allowedModule string) (*models.Certificate, error)
	Delete(ctx context.Context, certID int64, allowedModule string) error
	BackfillSnapshot(ctx context.Context, certID int64, fullName, position, module string, managerID *int, managerName *string) error
}

// ProfileStore is the persistence surface for profile overlays.
type ProfileStore interface {
	Get(ctx context.Context, userID int) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
	Seed(ctx context.Context, users []models.User, defaultModule string) error
}

// Cache abstracts the Redis-backed listing cache.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}
