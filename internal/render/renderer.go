package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/avolkov/cert-registry-api/pkg/config"
)

// Renderer produces shareable certificate documents: an SVG card, a printable
// PDF and a QR code pointing at the public verification page.
type Renderer struct {
	fontDir      string
	shareBaseURL string

	fontOnce     sync.Once
	regularFont  string
	boldFont     string
	unicodeFonts bool
}

// NewRenderer constructs a Renderer.
func NewRenderer(cfg config.RenderConfig, shareBaseURL string) *Renderer {
	return &Renderer{fontDir: cfg.FontDir, shareBaseURL: shareBaseURL}
}

// ShareURL is the public verification link for a certificate.
func (r *Renderer) ShareURL(certID int64) string {
	return fmt.Sprintf("%s/share/%d", r.shareBaseURL, certID)
}

// initFonts probes the font directory once. When the DejaVu faces are missing
// the PDF falls back to the built-in core fonts with cp1251 transliteration.
func (r *Renderer) initFonts() {
	r.fontOnce.Do(func() {
		regular := filepath.Join(r.fontDir, "DejaVuSans.ttf")
		bold := filepath.Join(r.fontDir, "DejaVuSans-Bold.ttf")
		if fileExists(regular) && fileExists(bold) {
			r.regularFont = regular
			r.boldFont = bold
			r.unicodeFonts = true
		}
	})
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
