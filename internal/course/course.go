// Package course maps course types and free-text row values to the display
// names printed on certificates and shown during verification.
package course

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

const (
	DLIBasic     = "DLI Basic"
	DLIAdvanced  = "DLI Advanced"
	Discipleship = "Dominion Leadership Institute"
)

// displayNames maps the enumerated course types (which also select the PDF
// template) to their display strings.
var displayNames = map[string]string{
	"dli-basic":    DLIBasic,
	"dli-advanced": DLIAdvanced,
	"discipleship": Discipleship,
}

// rowKeys are the candidate column names for a course value in an uploaded
// row, in priority order.
var rowKeys = []string{"Course Name", "Course", "course_name", "course", "courseName"}

// Display resolves the course display name from an explicit type, falling
// back to the uploaded row's free text. Returns "" when nothing applies.
func Display(courseType string, row map[string]string) string {
	if name, ok := displayNames[courseType]; ok {
		return name
	}
	return FromRow(row)
}

// FromRow derives a display name from free-text row data: keyword rules
// first, then a fuzzy match against the known names, else the raw value.
func FromRow(row map[string]string) string {
	if row == nil {
		return ""
	}
	for _, key := range rowKeys {
		v := strings.TrimSpace(row[key])
		if v == "" {
			continue
		}
		lower := strings.ToLower(v)
		switch {
		case strings.Contains(lower, "dli") && strings.Contains(lower, "advanced"):
			return DLIAdvanced
		case strings.Contains(lower, "dli") && strings.Contains(lower, "basic"):
			return DLIBasic
		case strings.Contains(lower, "domin") || strings.Contains(lower, "discipleship") || strings.Contains(lower, "dli"):
			if strings.Contains(lower, "basic") {
				return DLIBasic
			}
			if strings.Contains(lower, "advanced") {
				return DLIAdvanced
			}
			return Discipleship
		}
		if name, ok := closestKnown(lower); ok {
			return name
		}
		return v
	}
	return ""
}

// closestKnown fuzzy-matches a free-text course value against the known
// display names, tolerating typos like "DLI Bsic".
func closestKnown(lower string) (string, bool) {
	metric := metrics.NewJaroWinkler()
	best, bestScore := "", 0.0
	for _, name := range displayNames {
		score := strutil.Similarity(lower, strings.ToLower(name), metric)
		if score > bestScore {
			best, bestScore = name, score
		}
	}
	if bestScore >= 0.85 {
		return best, true
	}
	return "", false
}
