package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter reads interactive input. Passwords are read with echo disabled
// when stdin is a terminal; under a pipe they fall back to plain lines so
// scripted use still works.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

func newPrompter() *prompter {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fd = -1
	}
	return &prompter{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
		fd:  fd,
	}
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)

	text, err := p.in.ReadString('\n')
	if err != nil && text == "" {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (p *prompter) password(label string) (string, error) {
	if p.fd < 0 {
		return p.line(label)
	}

	fmt.Fprint(p.out, label)
	raw, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
