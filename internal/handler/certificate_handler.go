package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/cert-registry-api/internal/models"
	appErrors "github.com/avolkov/cert-registry-api/pkg/errors"
	"github.com/avolkov/cert-registry-api/pkg/response"
)

// CertificateHandler exposes the registry operations over HTTP.
type CertificateHandler struct {
	certs   CertificateService
	metrics MetricsRecorder
}

// NewCertificateHandler constructs a CertificateHandler.
func NewCertificateHandler(certs CertificateService, metrics MetricsRecorder) *CertificateHandler {
	return &CertificateHandler{certs: certs, metrics: metrics}
}

// Create godoc
// @Summary Register a certificate for the authenticated user
// @Tags certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateCertificateRequest true "Certificate"
// @Success 201 {object} response.Envelope{data=models.Certificate}
// @Failure 400 {object} response.Envelope
// @Router /certificates [post]
func (h *CertificateHandler) Create(c *gin.Context) {
	viewer, err := currentViewer(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.CreateCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	created, err := h.certs.Create(c.Request.Context(), viewer, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.CertificateCreated()
	response.Created(c, created)
}

// ListMine godoc
// @Summary List the authenticated user's certificates
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.Certificate}
// @Router /certificates/my [get]
func (h *CertificateHandler) ListMine(c *gin.Context) {
	viewer, err := currentViewer(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	certs, err := h.certs.ListMine(c.Request.Context(), viewer)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, certs)
}

// ExamRequests godoc
// @Summary List certificates queued for the authenticated examiner
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.Certificate}
// @Router /certificates/exam-requests [get]
func (h *CertificateHandler) ExamRequests(c *gin.Context) {
	viewer, err := currentViewer(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	certs, err := h.certs.ListExamRequests(c.Request.Context(), viewer)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, certs)
}

// Team godoc
// @Summary List certificates of the viewer's team or controlled module
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.Certificate}
// @Router /certificates/team [get]
func (h *CertificateHandler) Team(c *gin.Context) {
	viewer, err := currentViewer(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	certs, err := h.certs.ListTeam(c.Request.Context(), viewer)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, certs)
}

// Get godoc
// @Summary Get one certificate
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Success 200 {object} response.Envelope{data=models.Certificate}
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /certificates/{id} [get]
func (h *CertificateHandler) Get(c *gin.Context) {
	viewer, err := currentViewer(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := certificateID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	cert, err := h.certs.Get(c.Request.Context(), viewer, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cert)
}

// SubmitExam godoc
// @Summary Record an exam result as the assigned examiner
// @Tags certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Param request body models.ExamResultRequest true "Exam outcome"
// @Success 200 {object} response.Envelope{data=models.Certificate}
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /certificates/{id}/exam [post]
func (h *CertificateHandler) SubmitExam(c *gin.Context) {
	viewer, err := currentViewer(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := certificateID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.ExamResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	updated, err := h.certs.SubmitExam(c.Request.Context(), viewer, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ExamRecorded(string(updated.WorkflowStatus))
	response.JSON(c, http.StatusOK, updated)
}

// Revoke godoc
// @Summary Revoke a certificate
// @Tags certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Param request body models.RevokeRequest true "Revocation reason"
// @Success 200 {object} response.Envelope{data=models.Certificate}
// @Failure 403 {object} response.Envelope
// @Router /certificates/{id}/revoke [post]
func (h *CertificateHandler) Revoke(c *gin.Context) {
	viewer, err := currentViewer(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := certificateID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "reason is required"))
		return
	}

	updated, err := h.certs.Revoke(c.Request.Context(), viewer, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.CertificateRevoked()
	response.JSON(c, http.StatusOK, updated)
}

// Unrevoke godoc
// @Summary Restore a revoked certificate
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Success 200 {object} response.Envelope{data=models.Certificate}
// @Failure 403 {object} response.Envelope
// @Router /certificates/{id}/unrevoke [post]
func (h *CertificateHandler) Unrevoke(c *gin.Context) {
	viewer, err := currentViewer(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := certificateID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	updated, err := h.certs.Unrevoke(c.Request.Context(), viewer, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated)
}

// Update godoc
// @Summary Edit a certificate's presentational fields
// @Tags certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Param request body models.UpdateCertificateRequest true "New fields"
// @Success 200 {object} response.Envelope{data=models.Certificate}
// @Failure 403 {object} response.Envelope
// @Router /certificates/{id} [put]
func (h *CertificateHandler) Update(c *gin.Context) {
	viewer, err := currentViewer(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := certificateID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.UpdateCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	updated, err := h.certs.Update(c.Request.Context(), viewer, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated)
}

// Delete godoc
// @Summary Permanently remove a certificate
// @Tags certificates
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /certificates/{id} [delete]
func (h *CertificateHandler) Delete(c *gin.Context) {
	viewer, err := currentViewer(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := certificateID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.certs.Delete(c.Request.Context(), viewer, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// PublicStatus godoc
// @Summary Check certificate validity without authentication
// @Tags public
// @Produce json
// @Param id path int true "Certificate ID"
// @Success 200 {object} response.Envelope{data=models.PublicStatus}
// @Failure 404 {object} response.Envelope
// @Router /public/certificates/{id}/status [get]
func (h *CertificateHandler) PublicStatus(c *gin.Context) {
	id, err := certificateID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	status, err := h.certs.PublicStatus(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}
