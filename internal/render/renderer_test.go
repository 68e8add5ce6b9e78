package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/cert-registry-api/internal/models"
	"github.com/avolkov/cert-registry-api/pkg/config"
)

func strPtr(s string) *string { return &s }

func newTestRenderer() *Renderer {
	return NewRenderer(config.RenderConfig{FontDir: "/nonexistent"}, "https://certs.example.com")
}

func TestShareURL(t *testing.T) {
	r := newTestRenderer()
	assert.Equal(t, "https://certs.example.com/share/42", r.ShareURL(42))
}

func TestSVGContainsSnapshotData(t *testing.T) {
	r := newTestRenderer()
	cert := models.Certificate{
		ID:               42,
		Name:             "AWS Certified",
		CertType:         models.CertTypeExternal,
		IssuedAt:         "2026-01-01",
		ExpiresAt:        "2027-01-01",
		WorkflowStatus:   models.StatusActive,
		SnapshotFullName: strPtr("Иванов Иван Сергеевич"),
		SnapshotPosition: strPtr("Младший специалист"),
	}

	svg := string(r.SVG(cert))
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, "AWS Certified")
	assert.Contains(t, svg, "Иванов Иван Сергеевич")
	assert.Contains(t, svg, "ДЕЙСТВИТЕЛЕН")
	assert.Contains(t, svg, "https://certs.example.com/share/42")
}

func TestSVGEscapesMarkup(t *testing.T) {
	r := newTestRenderer()
	cert := models.Certificate{
		ID:             1,
		Name:           `<script>alert("x")</script>`,
		CertType:       models.CertTypeExternal,
		WorkflowStatus: models.StatusActive,
	}

	svg := string(r.SVG(cert))
	assert.NotContains(t, svg, "<script>")
	assert.Contains(t, svg, "&lt;script&gt;")
}

func TestSVGRevokedBadge(t *testing.T) {
	r := newTestRenderer()
	cert := models.Certificate{
		ID:             2,
		Name:           "Внутренняя сертификация",
		CertType:       models.CertTypeInternal,
		WorkflowStatus: models.StatusRevoked,
		RevokedReason:  strPtr("нарушение регламента"),
	}

	svg := string(r.SVG(cert))
	assert.Contains(t, svg, "ОТОЗВАН")
	assert.Contains(t, svg, "нарушение регламента")
}

func TestPDFFallsBackWithoutFonts(t *testing.T) {
	r := newTestRenderer()
	cert := models.Certificate{
		ID:               3,
		Name:             "AWS Certified",
		CertType:         models.CertTypeExternal,
		IssuedAt:         "2026-01-01",
		WorkflowStatus:   models.StatusActive,
		SnapshotFullName: strPtr("Иванов Иван Сергеевич"),
	}

	doc, err := r.PDF(cert)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(doc), "%PDF"))
}

func TestQRProducesPNG(t *testing.T) {
	r := newTestRenderer()

	png, err := r.QR(42, 0)
	require.NoError(t, err)
	require.Greater(t, len(png), 8)
	assert.Equal(t, "\x89PNG", string(png[:4]))
}

func TestPaletteSelection(t *testing.T) {
	assert.Equal(t, paletteInvalid, PaletteFor(models.Certificate{WorkflowStatus: models.StatusRevoked}))
	assert.Equal(t, paletteInvalid, PaletteFor(models.Certificate{CertType: models.CertTypeInternal, WorkflowStatus: models.StatusFailed}))
	assert.Equal(t, paletteGold, PaletteFor(models.Certificate{CertType: models.CertTypeInternal, WorkflowStatus: models.StatusPassed, ExamGrade: strPtr("Hard")}))
	assert.Equal(t, paletteSilver, PaletteFor(models.Certificate{CertType: models.CertTypeInternal, WorkflowStatus: models.StatusPassed, ExamGrade: strPtr("4")}))
	assert.Equal(t, paletteBronze, PaletteFor(models.Certificate{CertType: models.CertTypeInternal, WorkflowStatus: models.StatusPassed, ExamGrade: strPtr("Light")}))
	assert.Equal(t, paletteDefault, PaletteFor(models.Certificate{CertType: models.CertTypeExternal, WorkflowStatus: models.StatusActive}))
}
