package workflow

import "strings"

// Award is the canonical exam level stored internally. The UI names the levels
// Hard / Standart / Light; legacy rows may hold numeric school grades or
// Russian medal names, all of which normalize onto the same three codes.
type Award string

const (
	AwardGold   Award = "gold"
	AwardSilver Award = "silver"
	AwardBronze Award = "bronze"
	AwardNone   Award = ""
)

// FailSentinel is the stored grade of a failed exam.
const FailSentinel = "Не сдан"

// awardSynonyms is checked in order: the top tier wins before lower tiers so
// that ambiguous legacy input resolves upward.
var awardSynonyms = []struct {
	award Award
	exact []string
	subs  []string
}{
	{AwardGold, []string{"5", "5.0", "gold"}, []string{"зол", "hard"}},
	{AwardSilver, []string{"4", "4.0", "silver", "standart", "standard"}, []string{"сереб", "standart", "standard"}},
	{AwardBronze, []string{"3", "3.0", "2", "2.0", "bronze"}, []string{"брон", "light"}},
}

// NormalizeAward maps free-form grade input to a canonical level. Unrecognized
// input (including the fail sentinel) yields AwardNone.
func NormalizeAward(grade string) Award {
	g := strings.ToLower(strings.TrimSpace(grade))
	if g == "" {
		return AwardNone
	}
	for _, entry := range awardSynonyms {
		for _, exact := range entry.exact {
			if g == exact {
				return entry.award
			}
		}
		for _, sub := range entry.subs {
			if strings.Contains(g, sub) {
				return entry.award
			}
		}
	}
	return AwardNone
}

// AwardLabel returns the current UI name of the normalized level, or "" when
// the input does not map to a level.
func AwardLabel(grade string) string {
	switch NormalizeAward(grade) {
	case AwardGold:
		return "Hard"
	case AwardSilver:
		return "Standart"
	case AwardBronze:
		return "Light"
	default:
		return ""
	}
}

// failSpellings are accepted ways of reporting a failed exam.
var failSpellings = map[string]struct{}{
	"не сдан":  {},
	"не сдал":  {},
	"не сдано": {},
}

// CanonicalGrade converts raw examiner input into the stored grade value: a
// level label, or the fail sentinel. Empty result means the input was not a
// recognizable grade.
func CanonicalGrade(raw string) string {
	if _, ok := failSpellings[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return FailSentinel
	}
	return AwardLabel(raw)
}
