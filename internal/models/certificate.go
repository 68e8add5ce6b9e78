package models

import "time"

// CertType distinguishes externally issued certificates from internal ones
// that require an exam.
type CertType string

const (
	CertTypeExternal CertType = "external"
	CertTypeInternal CertType = "internal"
)

// Valid reports whether the type is a known value.
func (t CertType) Valid() bool {
	return t == CertTypeExternal || t == CertTypeInternal
}

// WorkflowStatus is the stored lifecycle state of a certificate.
type WorkflowStatus string

const (
	StatusActive      WorkflowStatus = "active"
	StatusPendingExam WorkflowStatus = "pending_exam"
	StatusPassed      WorkflowStatus = "passed"
	StatusFailed      WorkflowStatus = "failed"
	StatusRevoked     WorkflowStatus = "revoked"
)

// Certificate is the central registry entity. Snapshot fields freeze the
// owner's profile at issuance and are never rewritten by later profile edits.
type Certificate struct {
	ID        int64     `db:"id" json:"id"`
	OwnerID   int       `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	CertType  CertType  `db:"cert_type" json:"cert_type"`
	Topic     *string   `db:"topic" json:"topic,omitempty"`
	IssuedAt  string    `db:"issued_at" json:"issued_at"`
	ExpiresAt string    `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	WorkflowStatus       WorkflowStatus `db:"workflow_status" json:"workflow_status"`
	RequiredExaminerID   *int           `db:"required_examiner_id" json:"required_examiner_id,omitempty"`
	RequiredExaminerName *string        `db:"required_examiner_name" json:"required_examiner_name,omitempty"`
	ExamGrade            *string        `db:"exam_grade" json:"exam_grade,omitempty"`
	ExamDate             *string        `db:"exam_date" json:"exam_date,omitempty"`

	SnapshotFullName    *string `db:"snapshot_full_name" json:"snapshot_full_name,omitempty"`
	SnapshotPosition    *string `db:"snapshot_position" json:"snapshot_position,omitempty"`
	SnapshotModule      *string `db:"snapshot_module" json:"snapshot_module,omitempty"`
	SnapshotManagerID   *int    `db:"snapshot_manager_id" json:"snapshot_manager_id,omitempty"`
	SnapshotManagerName *string `db:"snapshot_manager_name" json:"snapshot_manager_name,omitempty"`

	RevokedByID   *int       `db:"revoked_by_id" json:"revoked_by_id,omitempty"`
	RevokedByName *string    `db:"revoked_by_name" json:"revoked_by_name,omitempty"`
	RevokedReason *string    `db:"revoked_reason" json:"revoked_reason,omitempty"`
	RevokedAt     *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`

	// Derived on read, never stored.
	Status      string `db:"-" json:"status,omitempty"`
	StatusLabel string `db:"-" json:"status_label,omitempty"`
}

// EffectiveModule returns the snapshot module, or the registry default when
// the snapshot predates module tracking.
func (c Certificate) EffectiveModule(defaultModule string) string {
	if c.SnapshotModule != nil && *c.SnapshotModule != "" {
		return *c.SnapshotModule
	}
	return defaultModule
}

// Revoked reports whether the certificate is currently revoked.
func (c Certificate) Revoked() bool {
	return c.WorkflowStatus == StatusRevoked
}

// GradeValue returns the recorded exam grade or the empty string.
func (c Certificate) GradeValue() string {
	if c.ExamGrade == nil {
		return ""
	}
	return *c.ExamGrade
}

// PublicStatus is the binary answer shown to anonymous viewers. It carries no
// reason on purpose: revoked, expired and not-yet-passed all look the same.
type PublicStatus struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}
