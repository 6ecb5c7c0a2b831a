package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"seasonpass/internal/config"
	"seasonpass/internal/experience"
	"seasonpass/internal/flow"
	"seasonpass/internal/playback"
	"seasonpass/internal/quiz"
	"seasonpass/internal/stage"
	"seasonpass/internal/unlock"
)

var errUnknownCommand = errors.New("unknown command; type help")

// player renders the experience as line-based terminal output and maps typed
// commands onto it. Everything runs on the event loop goroutine.
type player struct {
	cfg      *config.Config
	exp      *experience.Experience
	out      io.Writer
	colorize bool
	quit     func()
	lastMenu string
	numbers  *message.Printer
}

func newPlayer(cfg *config.Config, out io.Writer, colorize bool) *player {
	return &player{
		cfg:      cfg,
		out:      out,
		colorize: colorize,
		quit:     func() {},
		numbers:  message.NewPrinter(language.English),
	}
}

func (p *player) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *player) hooks() experience.Hooks {
	return experience.Hooks{
		Stage:             p.onStage,
		PrologueSkippable: func() { p.printf("(type skip to jump ahead)\n") },
		QuizPhase:         p.onQuizPhase,
		QuizQuestion:      p.onQuestion,
		Menu:              p.onMenu,
		PlaybackState:     p.onPlaybackState,
		Caption: func(index int, c playback.Caption) {
			if index >= 0 {
				p.printf("  [%s] %s\n", playback.FormatClock(c.Time), c.Text)
			}
		},
	}
}

// greet prints the start screen.
func (p *player) greet() {
	p.printf("%s\n", renderSectionHeader("Season Pass", p.colorize))
	p.printf("Press Enter to begin. Type help for commands at any time.\n")
}

func (p *player) dispatch(line string) {
	if err := p.handle(line); err != nil {
		p.printf("%s\n", paint("! "+err.Error(), ansiRed, p.colorize))
	}
}

func (p *player) handle(line string) error {
	fields := strings.Fields(line)
	cmd := ""
	if len(fields) > 0 {
		cmd = strings.ToLower(fields[0])
	}
	switch cmd {
	case "quit", "exit", "q":
		p.quit()
		return nil
	case "help", "?":
		p.printHelp()
		return nil
	}

	switch p.exp.Stage() {
	case stage.Start:
		p.exp.Interact()
		return nil
	case stage.Prologue:
		if cmd == "skip" || cmd == "s" {
			return p.exp.SkipPrologue()
		}
		return errUnknownCommand
	case stage.Intro:
		return errors.New("the intro is playing")
	case stage.Choice:
		switch cmd {
		case "quiz", "1":
			return p.exp.ChooseInterview()
		case "menu", "2":
			return p.exp.ChooseMenu()
		}
		return errUnknownCommand
	case stage.Interview:
		return p.handleQuiz(cmd)
	case stage.Menu:
		return p.handleMenu(cmd, fields)
	case stage.Playback:
		return p.handlePlayback(cmd, fields)
	case stage.Final:
		p.printf("That was the last season. Type quit to leave.\n")
		return nil
	}
	return errUnknownCommand
}

func (p *player) handleQuiz(cmd string) error {
	session := p.exp.Quiz()
	if session == nil {
		return errors.New("the interview is not ready")
	}
	switch session.Phase() {
	case quiz.PhaseRules:
		return session.Start()
	case quiz.PhaseQuiz:
		n, err := strconv.Atoi(cmd)
		if err != nil {
			return fmt.Errorf("answer with a number from 1 to %d", quiz.OptionCount)
		}
		answer, err := session.Select(n - 1)
		if err != nil {
			return err
		}
		if !answer.Accepted {
			p.printf("Already answered. Next question coming up.\n")
		} else if answer.Correct {
			p.printf("%s\n", paint("Correct!", ansiGreen, p.colorize))
		} else {
			right := session.Current().Options[session.Current().Correct]
			p.printf("%s\n", paint("Not quite. The answer was: "+right, ansiYellow, p.colorize))
		}
		return nil
	default:
		switch cmd {
		case "continue", "c", "":
			if !session.Passed() {
				return session.Retry()
			}
			return session.Continue()
		case "retry", "r":
			return session.Retry()
		}
		return errUnknownCommand
	}
}

func (p *player) handleMenu(cmd string, fields []string) error {
	switch cmd {
	case "", "status", "ls":
		p.lastMenu = ""
		p.onMenu(p.exp.Controller().Statuses())
		return nil
	case "play", "p":
		if len(fields) < 2 {
			return errors.New("usage: play <season>")
		}
		unit, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("season must be a number: %q", fields[1])
		}
		return p.exp.SelectSeason(unit)
	case "code":
		if len(fields) < 3 {
			return errors.New("usage: code <season> <code>")
		}
		unit, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("season must be a number: %q", fields[1])
		}
		res, err := p.exp.SubmitCode(unit, strings.Join(fields[2:], " "))
		if err != nil {
			return err
		}
		if res.Accepted {
			p.printf("%s\n", paint(fmt.Sprintf("Season %d unlocked.", unit), ansiGreen, p.colorize))
		}
		return nil
	}
	if unit, err := strconv.Atoi(cmd); err == nil {
		return p.exp.SelectSeason(unit)
	}
	return errUnknownCommand
}

func (p *player) handlePlayback(cmd string, fields []string) error {
	session := p.exp.Player()
	if session == nil {
		return errors.New("no season is loaded")
	}
	switch cmd {
	case "":
		p.printf("  %s / %s (%s)\n", playback.FormatClock(session.Position()), playback.FormatClock(session.CompletionTime()), session.State())
		return nil
	case "p", "play", "pause":
		err := session.TogglePlay()
		if playback.IsBlocked(err) {
			p.printf("  Playback did not start. Type p to try again.\n")
			return nil
		}
		return err
	case "f", "ff", ">":
		return session.SkipForward()
	case "b", "rw", "<":
		return session.SkipBackward()
	case "seek":
		if len(fields) < 2 {
			return errors.New("usage: seek <MM:SS or seconds>")
		}
		t, err := parseClock(fields[1])
		if err != nil {
			return err
		}
		return session.Seek(t)
	case "back", "menu":
		return p.exp.Back()
	}
	return errUnknownCommand
}

func (p *player) onStage(ev flow.Event) {
	p.printf("\n%s\n", renderSectionHeader(ev.To.Label(), p.colorize))
	switch ev.To {
	case stage.Prologue:
		p.printf("The prologue is playing.\n")
	case stage.Intro:
		p.printf("...\n")
	case stage.Choice:
		p.printf("Welcome back. Type quiz to retake the interview or menu to pick a season.\n")
	case stage.Menu:
		p.lastMenu = ""
	case stage.Playback:
		if season, ok := p.exp.Catalog().Season(ev.Unit); ok {
			p.printf("Season %d: %s\n%s\n", season.Number, season.Title, season.Chapter)
		}
		p.printf("Controls: p play/pause, f/b skip %.0fs, seek MM:SS, back\n", p.cfg.Playback.SkipSeconds)
	case stage.Final:
		p.printf("Every season is complete. Thank you for watching.\n")
	}
}

func (p *player) onQuizPhase(phase quiz.Phase) {
	session := p.exp.Quiz()
	switch phase {
	case quiz.PhaseRules:
		total := len(p.exp.Catalog().Questions)
		p.printf("The interview: %d questions, %d correct answers to pass. Type start when ready.\n", total, p.cfg.Quiz.PassScore)
	case quiz.PhaseResult:
		if session == nil {
			return
		}
		verdict := paint("FAILED", ansiRed, p.colorize)
		next := "Type retry to try again."
		if session.Passed() {
			verdict = paint("PASSED", ansiGreen, p.colorize)
			next = "Type continue to see the seasons."
		}
		p.printf("%s\n", renderTable("Result", []column{{header: "Score", right: true}, {header: "Winnings", right: true}, {header: "Verdict"}},
			[][]string{{fmt.Sprintf("%d/%d", session.Score(), session.Total()), p.numbers.Sprintf("$%d", session.Winnings()), verdict}}))
		p.printf("%s\n", next)
	}
}

func (p *player) onQuestion(index int, q quiz.Question) {
	p.printf("\nQ%d. %s\n", index+1, q.Prompt)
	for i, opt := range q.Options {
		p.printf("  %d) %s\n", i+1, opt)
	}
}

// onMenu prints the season table when something other than a countdown
// changed, so the per-second poll stays quiet.
func (p *player) onMenu(statuses []unlock.Status) {
	var sig strings.Builder
	for _, st := range statuses {
		fmt.Fprintf(&sig, "%d:%s:%t;", st.Unit, st.Availability, st.Completed)
	}
	if sig.String() == p.lastMenu {
		return
	}
	p.lastMenu = sig.String()
	p.printf("%s\n", renderSeasonTable(p.exp.Catalog(), statuses, p.colorize))
	for _, st := range statuses {
		if st.Availability == unlock.LockedWaiting && st.Hint != "" {
			p.printf("Season %d: %s\n", st.Unit, st.Hint)
		}
	}
	p.printf("Type play N to watch, or code N CODE to open a waiting season.\n")
}

func (p *player) onPlaybackState(unit int, _, to playback.State) {
	switch to {
	case playback.StatePaused:
		p.printf("  (paused)\n")
	case playback.StateReady:
		p.printf("  Ready. Type p to play.\n")
	case playback.StateCompleted:
		p.printf("%s\n", paint(fmt.Sprintf("Season %d complete.", unit), ansiGreen, p.colorize))
	}
}

func (p *player) printHelp() {
	help := [][]string{
		{"start", "Enter", "begin"},
		{"prologue", "skip", "skip once allowed"},
		{"choice", "quiz | menu", "retake the interview or go to the seasons"},
		{"interview", "start, 1-4, continue, retry", "answer the questions"},
		{"menu", "play N, code N CODE, status", "pick a season"},
		{"playback", "p, f, b, seek MM:SS, back", "control the season"},
		{"any", "help, quit", ""},
	}
	p.printf("%s\n", renderTable("Commands", []column{{header: "Screen"}, {header: "Command"}, {header: "Does"}}, help))
}

// parseClock accepts MM:SS, HH:MM:SS, or plain seconds.
func parseClock(value string) (float64, error) {
	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid position %q", value)
	}
	var total float64
	for _, part := range parts {
		n, err := strconv.ParseFloat(part, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid position %q", value)
		}
		total = total*60 + n
	}
	return total, nil
}
