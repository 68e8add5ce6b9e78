package models

// CreateCertificateRequest is the payload for registering a certificate.
// The examiner for internal certificates is not part of the payload; it is
// assigned from the owner's manager at creation time.
type CreateCertificateRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	CertType    CertType `json:"cert_type" validate:"required"`
	Topic       *string  `json:"topic,omitempty" validate:"omitempty,max=200"`
	IssuedAt    string   `json:"issued_at" validate:"required"`
	ExpiresAt   string   `json:"expires_at"`
	IsPerpetual bool     `json:"is_perpetual"`
}

// UpdateCertificateRequest edits the presentational fields of a certificate.
type UpdateCertificateRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	IssuedAt    string  `json:"issued_at" validate:"required"`
	ExpiresAt   string  `json:"expires_at"`
	IsPerpetual bool    `json:"is_perpetual"`
	Topic       *string `json:"topic,omitempty" validate:"omitempty,max=200"`
}

// ExamResultRequest records the outcome of an internal certification exam.
type ExamResultRequest struct {
	Grade    string `json:"grade" validate:"required"`
	ExamDate string `json:"exam_date"`
}

// RevokeRequest withdraws a certificate with a mandatory reason.
type RevokeRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ProfileUpdateRequest replaces the caller's profile overlay.
type ProfileUpdateRequest struct {
	FullName         string  `json:"full_name" validate:"required,max=200"`
	Position         string  `json:"position" validate:"required,max=200"`
	Module           string  `json:"module" validate:"required,max=200"`
	ManagerID        *int    `json:"manager_id,omitempty"`
	ControlledModule *string `json:"controlled_module,omitempty" validate:"omitempty,max=200"`
}
