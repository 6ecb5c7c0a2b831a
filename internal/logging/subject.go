package logging

import "strings"

// FormatSubject builds the unit/stage subject string used in console output.
func FormatSubject(unit, stage string) string {
	unit = strings.TrimSpace(unit)
	stage = strings.TrimSpace(stage)
	switch {
	case unit != "" && stage != "":
		return "Season " + unit + " (" + stage + ")"
	case unit != "":
		return "Season " + unit
	default:
		return stage
	}
}
