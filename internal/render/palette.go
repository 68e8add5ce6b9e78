package render

import (
	"github.com/avolkov/cert-registry-api/internal/models"
	"github.com/avolkov/cert-registry-api/internal/workflow"
)

// Palette is the color scheme of a rendered certificate document.
type Palette struct {
	Background string
	Panel      string
	Border     string
	Accent     string
	Text       string
	Muted      string
}

var (
	paletteGold = Palette{
		Background: "#1d1704", Panel: "#2b2208", Border: "#d4af37",
		Accent: "#f1c40f", Text: "#fdf6e3", Muted: "#c9b36a",
	}
	paletteSilver = Palette{
		Background: "#14161a", Panel: "#1f2328", Border: "#aab4be",
		Accent: "#c0c7ce", Text: "#f2f4f6", Muted: "#8d97a1",
	}
	paletteBronze = Palette{
		Background: "#1a1008", Panel: "#271a0e", Border: "#b07d4f",
		Accent: "#cd7f32", Text: "#f8efe6", Muted: "#a98867",
	}
	paletteDefault = Palette{
		Background: "#0b1526", Panel: "#13213a", Border: "#3a5a8c",
		Accent: "#4f8ef7", Text: "#eef3fb", Muted: "#8aa3c4",
	}
	paletteInvalid = Palette{
		Background: "#1f0b0b", Panel: "#2d1212", Border: "#8c3a3a",
		Accent: "#e05252", Text: "#fbeeee", Muted: "#c48a8a",
	}
)

// PaletteFor picks the document palette: revoked and failed-internal
// certificates render in red, passed exams in the color of their award level,
// everything else in the default scheme.
func PaletteFor(cert models.Certificate) Palette {
	if cert.Revoked() {
		return paletteInvalid
	}
	if cert.CertType == models.CertTypeInternal && cert.WorkflowStatus == models.StatusFailed {
		return paletteInvalid
	}
	switch workflow.NormalizeAward(cert.GradeValue()) {
	case workflow.AwardGold:
		return paletteGold
	case workflow.AwardSilver:
		return paletteSilver
	case workflow.AwardBronze:
		return paletteBronze
	default:
		return paletteDefault
	}
}
