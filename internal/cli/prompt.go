package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/shinji-kodama/recovery-card/internal/model"
)

// prompter asks for values one line at a time. Questions go to out (the
// command's stderr) so that stdout stays clean for a streamed PDF.
type prompter struct {
	in  *bufio.Reader
	out io.Writer

	// fd is the terminal file descriptor when stdin is a terminal, or -1.
	// Secret answers are then read without echo.
	fd int
}

// newPrompter creates a prompter reading from in.
//
// When in is the process's terminal (an *os.File for which
// term.IsTerminal is true), secret answers are read with
// term.ReadPassword so the phrase never appears on screen. Any other
// reader, such as a pipe or a test's strings.Reader, is read line by line
// with echo, which keeps "recovery-card < answers.txt" working.
func newPrompter(in io.Reader, out io.Writer) *prompter {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &prompter{in: bufio.NewReader(in), out: out, fd: fd}
}

// ask prints question and reads one line, trimmed. End of input yields
// whatever was typed so far, possibly nothing.
func (p *prompter) ask(question string, secret bool) (string, error) {
	fmt.Fprintln(p.out, question)
	fmt.Fprint(p.out, "> ")

	if secret && p.fd >= 0 {
		b, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	if err == io.EOF {
		fmt.Fprintln(p.out)
	}
	return strings.TrimSpace(line), nil
}

// askRequired is ask for a field that must not be empty. An empty answer
// is fatal immediately; there is no retry loop.
func (p *prompter) askRequired(question, field string, secret bool) (string, error) {
	answer, err := p.ask(question, secret)
	if err != nil {
		return "", model.WrapCLIError(model.ExitGeneralError, "failed to read user input", err)
	}
	if answer == "" {
		return "", model.NewCLIError(model.ExitGeneralError, field+" cannot be empty")
	}
	return answer, nil
}

// promptInputs collects the four card values interactively, in the order
// Proton, Bitwarden, account label, MetaMask. A blank account label falls
// back to defaultAccount.
func promptInputs(p *prompter, defaultAccount string) (*model.RecoveryInputs, error) {
	fmt.Fprintln(p.out, strings.Repeat("=", 50))
	fmt.Fprintln(p.out, "  Recovery Card Generator")
	fmt.Fprintln(p.out, strings.Repeat("=", 50))
	fmt.Fprintln(p.out)

	in := &model.RecoveryInputs{}
	var err error

	in.ProtonPhrase, err = p.askRequired("Enter your Proton recovery phrase (12 or 24 words):", "Proton phrase", true)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(p.out)

	in.BitwardenCode, err = p.askRequired("Enter your Bitwarden recovery code:", "Bitwarden phrase", true)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(p.out)

	account, err := p.ask(fmt.Sprintf("Enter your MetaMask account name (e.g., %s):", defaultAccount), false)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to read user input", err)
	}
	if account == "" {
		account = defaultAccount
	}
	in.MetaMaskAccount = account
	fmt.Fprintln(p.out)

	in.MetaMaskPhrase, err = p.askRequired("Enter your MetaMask 12-word seed phrase:", "MetaMask phrase", true)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(p.out)

	return in, nil
}
