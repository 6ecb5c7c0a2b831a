package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"seasonpass/internal/config"
	"seasonpass/internal/playback"
	"seasonpass/internal/quiz"
)

//go:embed catalog.toml
var bundledCatalog []byte

// CaptionEntry is one inline caption line.
type CaptionEntry struct {
	Time float64 `toml:"time"`
	Text string  `toml:"text"`
}

// Season describes one playable season.
type Season struct {
	Number       int            `toml:"number"`
	Title        string         `toml:"title"`
	Chapter      string         `toml:"chapter"`
	Description  string         `toml:"description"`
	AudioSeconds float64        `toml:"audio_seconds"`
	CaptionsFile string         `toml:"captions_file"`
	Captions     []CaptionEntry `toml:"captions"`
}

// PlaybackCaptions converts the inline captions for the playback engine.
func (s Season) PlaybackCaptions() []playback.Caption {
	out := make([]playback.Caption, 0, len(s.Captions))
	for _, c := range s.Captions {
		out = append(out, playback.Caption{Time: c.Time, Text: c.Text})
	}
	return playback.SortCaptions(out)
}

// Catalog is the full content bundle.
type Catalog struct {
	// PrologueSeconds is how long the prologue runs before ending on its
	// own. Zero means it only ends when skipped.
	PrologueSeconds float64         `toml:"prologue_seconds"`
	Seasons         []Season        `toml:"seasons"`
	Questions       []quiz.Question `toml:"questions"`
}

// Bundled returns the catalog compiled into the binary.
func Bundled() (*Catalog, error) {
	return parse(bundledCatalog, "")
}

// Load reads a catalog file. Relative captions_file entries resolve against
// the file's directory.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return parse(data, filepath.Dir(path))
}

// FromConfig loads paths.content_path when set, otherwise the bundled catalog.
func FromConfig(cfg *config.Config) (*Catalog, error) {
	if cfg != nil && strings.TrimSpace(cfg.Paths.ContentPath) != "" {
		return Load(cfg.Paths.ContentPath)
	}
	return Bundled()
}

func parse(data []byte, baseDir string) (*Catalog, error) {
	var cat Catalog
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cat); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("parse catalog: %s", strict.String())
		}
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i := range cat.Seasons {
		season := &cat.Seasons[i]
		if season.CaptionsFile == "" {
			continue
		}
		path := season.CaptionsFile
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		captions, err := playback.LoadSRT(path)
		if err != nil {
			return nil, fmt.Errorf("season %d captions: %w", season.Number, err)
		}
		season.Captions = season.Captions[:0]
		for _, c := range captions {
			season.Captions = append(season.Captions, CaptionEntry{Time: c.Time, Text: c.Text})
		}
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate checks that seasons are numbered 1..N in order and the question
// bank is well formed.
func (c *Catalog) Validate() error {
	if len(c.Seasons) == 0 {
		return errors.New("catalog: no seasons")
	}
	if c.PrologueSeconds < 0 {
		return errors.New("catalog: prologue_seconds must be non-negative")
	}
	for i, season := range c.Seasons {
		if season.Number != i+1 {
			return fmt.Errorf("catalog: season %d listed at position %d; seasons must be numbered 1..N in order", season.Number, i+1)
		}
		if strings.TrimSpace(season.Title) == "" {
			return fmt.Errorf("catalog: season %d has no title", season.Number)
		}
		if season.AudioSeconds < 0 {
			return fmt.Errorf("catalog: season %d audio_seconds must be non-negative", season.Number)
		}
		if len(season.Captions) == 0 && season.AudioSeconds == 0 {
			return fmt.Errorf("catalog: season %d needs captions or audio_seconds to know when it ends", season.Number)
		}
	}
	if err := quiz.Validate(c.Questions); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	return nil
}

// Units returns the number of seasons.
func (c *Catalog) Units() int {
	return len(c.Seasons)
}

// Season returns season n.
func (c *Catalog) Season(n int) (Season, bool) {
	if n < 1 || n > len(c.Seasons) {
		return Season{}, false
	}
	return c.Seasons[n-1], true
}
