package render

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/avolkov/cert-registry-api/internal/models"
	"github.com/avolkov/cert-registry-api/internal/workflow"
)

// PDF renders the printable A4 landscape document. Cyrillic text needs the
// DejaVu faces; when the font directory lacks them the built-in Helvetica is
// used with a cp1251 transliteration so output degrades instead of failing.
func (r *Renderer) PDF(cert models.Certificate) ([]byte, error) {
	r.initFonts()
	p := PaletteFor(cert)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	family := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1251")
	if r.unicodeFonts {
		family = "dejavu"
		pdf.AddUTF8Font(family, "", r.regularFont)
		pdf.AddUTF8Font(family, "B", r.boldFont)
		tr = func(s string) string { return s }
	}

	pageW, pageH := pdf.GetPageSize()

	// Background and frame
	bg := hexRGB(p.Background)
	pdf.SetFillColor(bg[0], bg[1], bg[2])
	pdf.Rect(0, 0, pageW, pageH, "F")
	border := hexRGB(p.Border)
	pdf.SetDrawColor(border[0], border[1], border[2])
	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, pageW-20, pageH-20, "D")

	muted := hexRGB(p.Muted)
	text := hexRGB(p.Text)
	accent := hexRGB(p.Accent)

	line := func(y float64, size float64, style string, rgb [3]int, value string) {
		if value == "" {
			return
		}
		pdf.SetFont(family, style, size)
		pdf.SetTextColor(rgb[0], rgb[1], rgb[2])
		pdf.SetXY(10, y)
		pdf.CellFormat(pageW-20, 10, tr(value), "", 0, "C", false, 0, "")
	}

	line(25, 14, "", muted, "СЕРТИФИКАТ")
	line(40, 26, "B", text, cert.Name)
	if cert.Topic != nil {
		line(54, 12, "", muted, *cert.Topic)
	}
	line(75, 20, "B", accent, deref(cert.SnapshotFullName))
	line(88, 12, "", muted, deref(cert.SnapshotPosition))
	line(96, 12, "", muted, deref(cert.SnapshotModule))

	line(115, 14, "B", accent, workflow.StatusBadge(cert))
	if label := workflow.AwardLabel(cert.GradeValue()); label != "" && cert.WorkflowStatus == models.StatusPassed {
		line(128, 13, "B", accent, fmt.Sprintf("Уровень: %s", label))
	}
	if cert.Revoked() && cert.RevokedReason != nil {
		line(128, 11, "", muted, fmt.Sprintf("Причина: %s", *cert.RevokedReason))
	}

	dates := fmt.Sprintf("Выдан: %s", cert.IssuedAt)
	if cert.ExpiresAt != "" {
		dates += fmt.Sprintf("   Действует до: %s", cert.ExpiresAt)
	}
	line(150, 11, "", muted, dates)
	if cert.RequiredExaminerName != nil {
		line(158, 10, "", muted, fmt.Sprintf("Экзаменатор: %s", *cert.RequiredExaminerName))
	}

	pdf.SetFont(family, "", 9)
	pdf.SetTextColor(muted[0], muted[1], muted[2])
	pdf.SetXY(15, pageH-22)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("№ %d", cert.ID)), "", 0, "L", false, 0, "")
	pdf.SetXY(15, pageH-22)
	pdf.CellFormat(pageW-30, 8, r.ShareURL(cert.ID), "", 0, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func hexRGB(hex string) [3]int {
	if len(hex) != 7 || hex[0] != '#' {
		return [3]int{0, 0, 0}
	}
	var out [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseInt(hex[1+i*2:3+i*2], 16, 32)
		if err != nil {
			return [3]int{0, 0, 0}
		}
		out[i] = int(v)
	}
	return out
}
