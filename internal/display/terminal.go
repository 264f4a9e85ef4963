package display

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spigell/talentscout/internal/candidate"

	"github.com/manifoldco/promptui"
)

const (
	clearScreen = "\033[H\033[2J"
	exitCommand = "exit"
)

var (
	assistantLabel = promptui.Styler(promptui.FGCyan, promptui.FGBold)
	userLabel      = promptui.Styler(promptui.FGGreen, promptui.FGBold)
	noticeStyle    = promptui.Styler(promptui.FGYellow)
)

// LineReader reads one line of user input.
type LineReader interface {
	ReadLine() (string, error)
}

// Terminal renders the full transcript on every turn and reads input through promptui.
type Terminal struct {
	out    io.Writer
	in     LineReader
	clear  bool
	styled bool
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithOutput overrides stdout.
func WithOutput(w io.Writer) Option { return func(t *Terminal) { t.out = w } }

// WithReader overrides the promptui line reader.
func WithReader(r LineReader) Option { return func(t *Terminal) { t.in = r } }

// WithClear clears the screen before each render.
func WithClear(enabled bool) Option { return func(t *Terminal) { t.clear = enabled } }

// WithStyle toggles ANSI styling of speaker labels.
func WithStyle(styled bool) Option { return func(t *Terminal) { t.styled = styled } }

func NewTerminal(opts ...Option) *Terminal {
	t := &Terminal{
		out:    os.Stdout,
		in:     &promptReader{prompt: promptui.Prompt{Label: "You"}},
		styled: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Render writes the whole transcript.
func (t *Terminal) Render(transcript candidate.Transcript) error {
	var b strings.Builder
	if t.clear {
		b.WriteString(clearScreen)
	}
	for _, turn := range transcript {
		fmt.Fprintf(&b, "%s: %s\n\n", t.label(turn.Speaker), turn.Text)
	}
	_, err := io.WriteString(t.out, b.String())
	return err
}

// Notice prints a one-off message that is not part of the transcript.
func (t *Terminal) Notice(msg string) error {
	if t.styled {
		msg = noticeStyle(msg)
	}
	_, err := fmt.Fprintln(t.out, msg)
	return err
}

// ReadLine returns the next line of input. Interrupt and EOF are reported as the exit keyword.
func (t *Terminal) ReadLine() (string, error) {
	line, err := t.in.ReadLine()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, io.EOF) {
		return exitCommand, nil
	}
	return line, err
}

func (t *Terminal) label(s candidate.Speaker) string {
	name := "Assistant"
	style := assistantLabel
	if s == candidate.SpeakerUser {
		name = "You"
		style = userLabel
	}
	if !t.styled {
		return name
	}
	return style(name)
}

type promptReader struct {
	prompt promptui.Prompt
}

func (p *promptReader) ReadLine() (string, error) {
	return p.prompt.Run()
}
