package nodes

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	logx "github.com/healthbot/server/pkg/logger"
)

// Console is the patient-facing terminal surface.
type Console interface {
	// ReadLine prints prompt and returns the next trimmed input line.
	// It returns ctx.Err() if ctx ends first and io.EOF once input is closed.
	ReadLine(ctx context.Context, prompt string) (string, error)
	Println(a ...any)
	Printf(format string, a ...any)
	// Markdown prints md, rendered for the terminal when possible.
	Markdown(md string)
}

type inputResult struct {
	text string
	err  error
}

// TerminalConsole reads lines from a reader on a single background
// goroutine so a blocked read can be abandoned when the session ends.
type TerminalConsole struct {
	reader   *bufio.Reader
	writer   io.Writer
	renderer *glamour.TermRenderer
	plain    bool

	inputChan chan inputResult
	startOnce sync.Once
}

type ConsoleOption func(*TerminalConsole)

// WithPlainOutput disables markdown rendering.
func WithPlainOutput() ConsoleOption {
	return func(c *TerminalConsole) {
		c.plain = true
	}
}

// NewTerminalConsole defaults to stdin and stdout.
func NewTerminalConsole(r io.Reader, w io.Writer, opts ...ConsoleOption) *TerminalConsole {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	c := &TerminalConsole{
		reader: bufio.NewReader(r),
		writer: w,
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.plain {
		return c
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		logx.Warn().Err(err).Msg("Markdown renderer unavailable - using plain output")
		return c
	}
	c.renderer = renderer
	return c
}

func (c *TerminalConsole) initPump() {
	c.startOnce.Do(func() {
		c.inputChan = make(chan inputResult)
		go c.pump()
	})
}

// pump feeds stdin lines to ReadLine. The sends are unbuffered, so once the
// session stops calling ReadLine a pending send blocks forever and the
// goroutine lives until the process exits. One console serves one session.
func (c *TerminalConsole) pump() {
	for {
		text, err := c.reader.ReadString('\n')
		if text != "" {
			c.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				c.inputChan <- inputResult{err: err}
			}
			close(c.inputChan)
			return
		}
	}
}

func (c *TerminalConsole) ReadLine(ctx context.Context, prompt string) (string, error) {
	c.initPump()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(c.writer, prompt)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-c.inputChan:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.text), nil
	}
}

func (c *TerminalConsole) Println(a ...any) {
	fmt.Fprintln(c.writer, a...)
}

func (c *TerminalConsole) Printf(format string, a ...any) {
	fmt.Fprintf(c.writer, format, a...)
}

func (c *TerminalConsole) Markdown(md string) {
	if c.renderer != nil {
		out, err := c.renderer.Render(md)
		if err == nil {
			fmt.Fprintln(c.writer, strings.TrimRight(out, "\n"))
			return
		}
		logx.Debug().Err(err).Msg("Markdown render failed - printing raw text")
	}
	fmt.Fprintln(c.writer, md)
}

var _ Console = (*TerminalConsole)(nil)
