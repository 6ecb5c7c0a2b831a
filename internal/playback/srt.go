package playback

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseSRT reads SubRip cues as captions keyed by their start time. Cue end
// times are ignored because a caption stays active until the next one starts.
// Blocks without a parsable timing line are skipped.
func ParseSRT(r io.Reader) ([]Caption, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		captions []Caption
		start    float64
		inCue    bool
		text     []string
	)
	flush := func() {
		if inCue && len(text) > 0 {
			captions = append(captions, Caption{Time: start, Text: strings.Join(text, "\n")})
		}
		inCue = false
		text = text[:0]
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		line = strings.TrimPrefix(line, "\ufeff")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if strings.Contains(trimmed, "-->") {
			flush()
			parts := strings.SplitN(trimmed, "-->", 2)
			seconds, err := parseSRTTimestamp(parts[0])
			if err != nil {
				continue
			}
			start = seconds
			inCue = true
			continue
		}
		if !inCue {
			// cue index line
			continue
		}
		text = append(text, trimmed)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	flush()
	return SortCaptions(captions), nil
}

// LoadSRT parses the SubRip file at path.
func LoadSRT(path string) ([]Caption, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open srt: %w", err)
	}
	defer file.Close()
	return ParseSRT(file)
}

// parseSRTTimestamp accepts HH:MM:SS,mmm and the HH:MM:SS.mmm variant.
func parseSRTTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// FormatSRT writes captions as SubRip cues. Each cue ends where the next
// begins; the last ends at end.
func FormatSRT(w io.Writer, captions []Caption, end float64) error {
	for i, c := range captions {
		stop := end
		if i+1 < len(captions) {
			stop = captions[i+1].Time
		}
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n", i+1, formatSRTTimestamp(c.Time), formatSRTTimestamp(stop), c.Text); err != nil {
			return fmt.Errorf("write srt: %w", err)
		}
	}
	return nil
}

func formatSRTTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(seconds*1000 + 0.5)
	hours := totalMillis / 3_600_000
	minutes := (totalMillis % 3_600_000) / 60_000
	secs := (totalMillis % 60_000) / 1000
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
