package workflow

import "github.com/avolkov/cert-registry-api/internal/models"

// CanView decides read access to a certificate: the owner always may; HR may
// within its controlled module (defaulting to the registry module when none is
// configured); managers may when the owner reports to them directly or
// transitively. descendants must hold the viewer's transitive subordinate set.
func CanView(viewer models.DisplayUser, cert models.Certificate, descendants map[int]bool, defaultModule string) bool {
	if cert.OwnerID == viewer.ID {
		return true
	}

	if viewer.Role == models.RoleHR {
		allowed := defaultModule
		if viewer.ControlledModule != nil && *viewer.ControlledModule != "" {
			allowed = *viewer.ControlledModule
		}
		return cert.EffectiveModule(defaultModule) == allowed
	}

	return descendants[cert.OwnerID]
}

// CanExamine decides whether the user may submit an exam result: only the
// assigned examiner of a non-revoked internal certificate. The predicate does
// not require pending_exam: a recorded result may be corrected until HR
// revokes the certificate.
func CanExamine(userID int, cert models.Certificate) bool {
	return cert.CertType == models.CertTypeInternal &&
		cert.RequiredExaminerID != nil &&
		*cert.RequiredExaminerID == userID &&
		!cert.Revoked()
}

// CanAdminister decides whether the user may revoke, unrevoke, edit or delete
// certificates at all; the per-certificate module guard is enforced by the
// store on each mutation.
func CanAdminister(viewer models.DisplayUser) bool {
	return viewer.Role == models.RoleHR
}

// AllowedModule returns the module an HR viewer administers, empty for
// unrestricted access. Non-HR users administer nothing.
func AllowedModule(viewer models.DisplayUser, defaultModule string) string {
	if viewer.ControlledModule != nil && *viewer.ControlledModule != "" {
		return *viewer.ControlledModule
	}
	return defaultModule
}
