package workflow

import (
	"time"

	"github.com/avolkov/cert-registry-api/internal/models"
)

// Derived display status codes. These are computed per read and never stored.
const (
	DisplayValid   = "valid"
	DisplayExpired = "expired"
	DisplayUnknown = "unknown"
	DisplayInvalid = "invalid"
	DisplayPending = "pending"
	DisplayRevoked = "revoked"
)

// dateLayout is the wire format of issued_at / expires_at / exam_date.
const dateLayout = "2006-01-02"

// InitialStatus decides the workflow state of a freshly created certificate.
func InitialStatus(certType models.CertType) models.WorkflowStatus {
	if certType == models.CertTypeInternal {
		return models.StatusPendingExam
	}
	return models.StatusActive
}

// ExamOutcome maps a canonical grade onto the resulting workflow state.
func ExamOutcome(grade string) models.WorkflowStatus {
	if grade == FailSentinel {
		return models.StatusFailed
	}
	return models.StatusPassed
}

// UnrevokeStatus recomputes the state a certificate returns to when its
// revocation is lifted, from the certificate's own type/grade/examiner fields:
// external goes back to active; internal with a recorded grade to passed or
// failed per that grade; internal with an assigned examiner but no grade back
// to the exam queue; internal with neither to active.
func UnrevokeStatus(cert models.Certificate) models.WorkflowStatus {
	if cert.CertType != models.CertTypeInternal {
		return models.StatusActive
	}
	if grade := cert.GradeValue(); grade != "" {
		if grade == FailSentinel {
			return models.StatusFailed
		}
		return models.StatusPassed
	}
	if cert.RequiredExaminerID != nil {
		return models.StatusPendingExam
	}
	return models.StatusActive
}

// TimeStatus classifies a certificate by its expiry date alone. An empty date
// means the certificate is perpetual; an unparseable one degrades to unknown
// instead of erroring so that bad legacy rows still display.
func TimeStatus(expiresAt string, now time.Time) (string, string) {
	if expiresAt == "" {
		return DisplayValid, "Действителен"
	}
	exp, err := time.Parse(dateLayout, expiresAt)
	if err != nil {
		return DisplayUnknown, "Неизвестно"
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if exp.Before(today) {
		return DisplayExpired, "Просрочен"
	}
	return DisplayValid, "Действителен"
}

// Decorate fills the derived status/status_label fields. Revocation overrides
// everything; an internal certificate is pending or invalid until the exam is
// passed; otherwise the expiry date decides. A passed internal certificate
// also gets its stored grade re-labelled to the current level names so old
// rows render consistently.
func Decorate(cert *models.Certificate, now time.Time) {
	if cert.Revoked() {
		cert.Status = DisplayRevoked
		cert.StatusLabel = "Отозван"
		return
	}

	if cert.CertType == models.CertTypeInternal {
		switch cert.WorkflowStatus {
		case models.StatusPendingExam:
			cert.Status = DisplayPending
			cert.StatusLabel = "Ожидает экзамен"
			return
		case models.StatusFailed:
			cert.Status = DisplayInvalid
			cert.StatusLabel = "Недействителен"
			return
		}
	}

	if cert.WorkflowStatus == models.StatusPassed {
		if grade := cert.GradeValue(); grade != "" && grade != FailSentinel {
			if label := AwardLabel(grade); label != "" {
				cert.ExamGrade = &label
			}
		}
	}

	cert.Status, cert.StatusLabel = TimeStatus(cert.ExpiresAt, now)
}

// PublicStatus reduces a certificate to the binary answer shown without
// authentication. The cause is deliberately withheld: a revoked, expired or
// not-yet-passed certificate all read as invalid.
func PublicStatus(cert models.Certificate, now time.Time) models.PublicStatus {
	invalid := models.PublicStatus{Code: DisplayInvalid, Label: "Недействителен"}

	if cert.Revoked() {
		return invalid
	}
	if code, _ := TimeStatus(cert.ExpiresAt, now); code == DisplayExpired {
		return invalid
	}
	if cert.CertType == models.CertTypeInternal && cert.WorkflowStatus != models.StatusPassed {
		return invalid
	}
	return models.PublicStatus{Code: DisplayValid, Label: "Действителен"}
}

// StatusBadge is the uppercase workflow caption used on rendered documents.
func StatusBadge(cert models.Certificate) string {
	if cert.Revoked() {
		return "ОТОЗВАН"
	}
	if cert.CertType == models.CertTypeInternal {
		switch cert.WorkflowStatus {
		case models.StatusPendingExam:
			return "ОЖИДАЕТ ЭКЗАМЕН"
		case models.StatusPassed:
			return "ЭКЗАМЕН СДАН"
		case models.StatusFailed:
			return "ЭКЗАМЕН НЕ СДАН"
		}
	}
	return "ДЕЙСТВИТЕЛЕН"
}
