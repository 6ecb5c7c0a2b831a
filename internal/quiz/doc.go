// Package quiz implements the interview gate that stands between the intro
// and the season menu: a fixed list of four-option questions answered once
// each, auto-advancing after a short pause, and scored against a pass
// threshold.
package quiz
