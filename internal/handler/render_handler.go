package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/cert-registry-api/internal/render"
	"github.com/avolkov/cert-registry-api/pkg/response"
)

// RenderHandler serves certificate documents: SVG card, printable PDF and the
// verification QR code. All three require view access to the certificate.
type RenderHandler struct {
	certs    CertificateService
	renderer *render.Renderer
}

// NewRenderHandler constructs a RenderHandler.
func NewRenderHandler(certs CertificateService, renderer *render.Renderer) *RenderHandler {
	return &RenderHandler{certs: certs, renderer: renderer}
}

// Image godoc
// @Summary Render the certificate as an SVG card
// @Tags render
// @Produce image/svg+xml
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Success 200 {string} string "SVG document"
// @Router /certificates/{id}/image [get]
func (h *RenderHandler) Image(c *gin.Context) {
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
	c.Data(http.StatusOK, "image/svg+xml", h.renderer.SVG(*cert))
}

// PDF godoc
// @Summary Render the certificate as a printable PDF
// @Tags render
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Success 200 {string} string "PDF document"
// @Router /certificates/{id}/pdf [get]
func (h *RenderHandler) PDF(c *gin.Context) {
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
	doc, err := h.renderer.PDF(*cert)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=certificate-%d.pdf", cert.ID))
	c.Data(http.StatusOK, "application/pdf", doc)
}

// QR godoc
// @Summary Render the QR code of the public verification link
// @Tags render
// @Produce image/png
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Param size query int false "Image size in pixels"
// @Success 200 {string} string "PNG image"
// @Router /certificates/{id}/qr [get]
func (h *RenderHandler) QR(c *gin.Context) {
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

	size, _ := strconv.Atoi(c.DefaultQuery("size", "256"))
	png, err := h.renderer.QR(cert.ID, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
