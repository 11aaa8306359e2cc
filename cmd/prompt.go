package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Swapped out in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// prompter reads secrets without echo from a terminal, or line by line from
// any other input so that passwords can be piped in.
type prompter struct {
	in       *bufio.Reader
	out      io.Writer
	fd       int
	terminal bool
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	fd := int(os.Stdin.Fd())
	return &prompter{
		in:       bufio.NewReader(in),
		out:      out,
		fd:       fd,
		terminal: in == os.Stdin && isTerminal(fd),
	}
}

func (p *prompter) password(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)

	if p.terminal {
		pw, err := readPassword(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// newPassword reads a password twice and checks both entries match.
func (p *prompter) newPassword() (string, error) {
	first, err := p.password("Password: ")
	if err != nil {
		return "", err
	}
	if first == "" {
		return "", errors.New("password must not be empty")
	}
	second, err := p.password("Repeat password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}
