package views

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Terminal reads form input and shows alerts on a line-oriented terminal.
// It shares its scanner with the shell so input is never split between readers.
type Terminal struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewTerminal returns a Terminal reading from in and writing to out.
func NewTerminal(in *bufio.Scanner, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

// Credentials prompts for an email and a password. Nothing is validated.
func (t *Terminal) Credentials() (email, password string) {
	email = t.ask("Email: ")
	password = t.ask("Password: ")
	return email, password
}

// Alert prints msg and blocks until Enter is pressed.
func (t *Terminal) Alert(msg string) {
	fmt.Fprintf(t.out, "!! %s\n", msg)
	t.ask("Press Enter to continue")
}

func (t *Terminal) ask(prompt string) string {
	fmt.Fprint(t.out, prompt)
	if !t.in.Scan() {
		return ""
	}
	return strings.TrimSpace(t.in.Text())
}
