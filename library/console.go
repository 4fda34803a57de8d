package library

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrInputClosed is returned when a prompt needs a line and the input has ended.
var ErrInputClosed = errors.New("input closed")

const clearSequence = "\033[2J\033[H" // Clear screen and move cursor to top

// Console is the line-oriented boundary between the menus and the user.
// When interactive is false, screen clears and key waits are skipped so a
// scripted input produces exactly the text the prompts print.
type Console struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool

	fd     int
	isTerm bool
}

// NewConsole builds a console over in and out. If in is a terminal, password
// prompts are masked and key waits read a single raw keystroke.
func NewConsole(in io.Reader, out io.Writer, interactive bool) *Console {
	c := &Console{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.fd = int(f.Fd())
		c.isTerm = true
	}
	return c
}

func (c *Console) Print(a ...any)                 { fmt.Fprint(c.out, a...) }
func (c *Console) Println(a ...any)               { fmt.Fprintln(c.out, a...) }
func (c *Console) Printf(format string, a ...any) { fmt.Fprintf(c.out, format, a...) }

// ReadLine returns the next line without its terminator. A final line with
// no newline is still returned; after that ErrInputClosed.
func (c *Console) ReadLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Prompt prints prompt without a newline and reads the answer.
func (c *Console) Prompt(prompt string) (string, error) {
	c.Print(prompt)
	return c.ReadLine()
}

// PromptPassword is Prompt with echo disabled when reading from a terminal.
func (c *Console) PromptPassword(prompt string) (string, error) {
	c.Print(prompt)
	if !c.interactive || !c.isTerm {
		return c.ReadLine()
	}
	bytePassword, err := term.ReadPassword(c.fd)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	c.Println() // Add newline after password input
	return string(bytePassword), nil
}

// PromptInt reads a line and parses it as a 32-bit integer. Surrounding
// spaces are accepted. ok is false when the text is not a number.
func (c *Console) PromptInt(prompt string) (n int32, ok bool, err error) {
	line, err := c.Prompt(prompt)
	if err != nil {
		return 0, false, err
	}
	n, ok = parseChoice(line)
	return n, ok, nil
}

func parseChoice(line string) (int32, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(line), 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(v), true
}

// ClearScreen wipes the terminal in interactive mode.
func (c *Console) ClearScreen() {
	if !c.interactive {
		return
	}
	c.Print(clearSequence)
}

// EnterToContinue prints the pause line and, in interactive mode, waits for
// a key. Without a terminal a whole line counts as the key.
func (c *Console) EnterToContinue() error {
	c.Println("Press any key to continue...")
	if !c.interactive {
		return nil
	}
	if c.isTerm {
		return c.readKey()
	}
	_, err := c.ReadLine()
	return err
}

func (c *Console) readKey() error {
	state, err := term.MakeRaw(c.fd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer term.Restore(c.fd, state)

	return c.consumeKey()
}

// consumeKey reads one keystroke. Escape sequences arrive as several bytes
// in one read, so whatever came with the first byte is dropped too.
func (c *Console) consumeKey() error {
	if _, err := c.in.ReadByte(); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrInputClosed
		}
		return err
	}
	_, err := c.in.Discard(c.in.Buffered())
	return err
}

// HandleInputError reports a non-numeric answer. It always returns false.
func (c *Console) HandleInputError() bool {
	c.Println("Only enter numerical value")
	return false
}
