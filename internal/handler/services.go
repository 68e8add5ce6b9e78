package handler

import (
	"context"

	"github.com/avolkov/cert-registry-api/internal/directory"
	"github.com/avolkov/cert-registry-api/internal/models"
)

// AuthService is the login surface the auth handler depends on.
type AuthService interface {
	Login(ctx context.Context, userID int) (*models.LoginResponse, error)
}

// ProfileService is the directory/profile surface handlers depend on.
type ProfileService interface {
	GroupedForLogin() []directory.RoleGroup
	ListDisplayUsers(ctx context.Context) ([]models.DisplayUser, error)
	Save(ctx context.Context, viewer models.DisplayUser, req models.ProfileUpdateRequest) (*models.DisplayUser, error)
}

// CertificateService is the registry surface handlers depend on.
type CertificateService interface {
	Create(ctx context.Context, viewer models.DisplayUser, req models.CreateCertificateRequest) (*models.Certificate, error)
	Get(ctx context.Context, viewer models.DisplayUser, certID int64) (*models.Certificate, error)
	ListMine(ctx context.Context, viewer models.DisplayUser) ([]models.Certificate, error)
	ListExamRequests(ctx context.Context, viewer models.DisplayUser) ([]models.Certificate, error)
	ListTeam(ctx context.Context, viewer models.DisplayUser) ([]models.Certificate, error)
	SubmitExam(ctx context.Context, viewer models.DisplayUser, certID int64, req models.ExamResultRequest) (*models.Certificate, error)
	Revoke(ctx context.Context, viewer models.DisplayUser, certID int64, req models.RevokeRequest) (*models.Certificate, error)
	Unrevoke(ctx context.Context, viewer models.DisplayUser, certID int64) (*models.Certificate, error)
	Update(ctx context.Context, viewer models.DisplayUser, certID int64, req models.UpdateCertificateRequest) (*models.Certificate, error)
	Delete(ctx context.Context, viewer models.DisplayUser, certID int64) error
	PublicStatus(ctx context.Context, certID int64) (*models.PublicStatus, error)
}

// MetricsRecorder counts domain events.
type MetricsRecorder interface {
	CertificateCreated()
	ExamRecorded(outcome string)
	CertificateRevoked()
}
