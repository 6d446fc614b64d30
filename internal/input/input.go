// Package input reads dice expressions typed at a REPL prompt.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// LineReader is anything that can read one line of typed input at a time.
type LineReader interface {
	ReadLine() (string, error)
	SetPrompt(string)
	Close() error
}

// DirectReader reads lines from an arbitrary io.Reader with no line editing;
// used when stdin is not a terminal (e.g. piped input) or readline is
// explicitly disabled.
type DirectReader struct {
	r      *bufio.Reader
	prompt string
}

// NewDirectReader wraps r in buffered line reading.
func NewDirectReader(r io.Reader) *DirectReader {
	return &DirectReader{r: bufio.NewReader(r)}
}

func (d *DirectReader) Close() error { return nil }

func (d *DirectReader) SetPrompt(p string) { d.prompt = p }

func (d *DirectReader) ReadLine() (string, error) {
	if d.prompt != "" {
		fmt.Print(d.prompt)
	}
	line, err := d.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// InteractiveReader reads lines from stdin via GNU-readline-alike line
// editing and history, for use when connected directly to a TTY.
type InteractiveReader struct {
	rl *readline.Instance
}

// NewInteractiveReader must have Close called on the result before the
// program exits to restore terminal state.
func NewInteractiveReader(prompt string) (*InteractiveReader, error) {
	rl, err := readline.NewEx(&readline.Config{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}
	return &InteractiveReader{rl: rl}, nil
}

func (i *InteractiveReader) Close() error { return i.rl.Close() }

func (i *InteractiveReader) SetPrompt(p string) { i.rl.SetPrompt(p) }

func (i *InteractiveReader) ReadLine() (string, error) {
	line, err := i.rl.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
