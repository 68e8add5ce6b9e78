package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/avolkov/cert-registry-api/internal/models"
	"github.com/avolkov/cert-registry-api/internal/workflow"
)

const (
	svgWidth  = 1200
	svgHeight = 800
)

// SVG renders the shareable certificate card. The layout is a fixed 1200x800
// canvas; all text comes from the issuance snapshot so later profile edits do
// not change an already issued document.
func (r *Renderer) SVG(cert models.Certificate) []byte {
	p := PaletteFor(cert)
	var b bytes.Buffer

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		svgWidth, svgHeight, svgWidth, svgHeight)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s"/>`, svgWidth, svgHeight, p.Background)
	fmt.Fprintf(&b, `<rect x="40" y="40" width="%d" height="%d" rx="24" fill="%s" stroke="%s" stroke-width="3"/>`,
		svgWidth-80, svgHeight-80, p.Panel, p.Border)

	text := func(x, y, size int, color, weight, anchor, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="DejaVu Sans, Arial, sans-serif" font-size="%d" font-weight="%s" fill="%s" text-anchor="%s">%s</text>`,
			x, y, size, weight, color, anchor, html.EscapeString(value))
	}

	center := svgWidth / 2
	text(center, 130, 28, p.Muted, "normal", "middle", "СЕРТИФИКАТ")
	text(center, 210, 44, p.Text, "bold", "middle", cert.Name)
	if cert.Topic != nil && *cert.Topic != "" {
		text(center, 260, 24, p.Muted, "normal", "middle", *cert.Topic)
	}

	text(center, 350, 34, p.Accent, "bold", "middle", deref(cert.SnapshotFullName))
	text(center, 395, 22, p.Muted, "normal", "middle", deref(cert.SnapshotPosition))
	text(center, 430, 22, p.Muted, "normal", "middle", deref(cert.SnapshotModule))

	// Status badge
	badge := workflow.StatusBadge(cert)
	fmt.Fprintf(&b, `<rect x="%d" y="470" width="400" height="56" rx="28" fill="none" stroke="%s" stroke-width="2"/>`,
		center-200, p.Accent)
	text(center, 506, 24, p.Accent, "bold", "middle", badge)

	if label := workflow.AwardLabel(cert.GradeValue()); label != "" && cert.WorkflowStatus == models.StatusPassed {
		text(center, 570, 26, p.Accent, "bold", "middle", fmt.Sprintf("Уровень: %s", label))
	}
	if cert.Revoked() && cert.RevokedReason != nil {
		text(center, 570, 20, p.Muted, "normal", "middle", fmt.Sprintf("Причина: %s", *cert.RevokedReason))
	}

	dates := fmt.Sprintf("Выдан: %s", cert.IssuedAt)
	if cert.ExpiresAt != "" {
		dates += fmt.Sprintf("  ·  Действует до: %s", cert.ExpiresAt)
	}
	text(center, 640, 20, p.Muted, "normal", "middle", dates)

	if cert.RequiredExaminerName != nil && *cert.RequiredExaminerName != "" {
		text(center, 675, 18, p.Muted, "normal", "middle", fmt.Sprintf("Экзаменатор: %s", *cert.RequiredExaminerName))
	}

	text(100, 730, 16, p.Muted, "normal", "start", fmt.Sprintf("№ %d", cert.ID))
	text(svgWidth-100, 730, 16, p.Muted, "normal", "end", r.ShareURL(cert.ID))

	b.WriteString(`</svg>`)
	return b.Bytes()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
