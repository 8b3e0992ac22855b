package usecase

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// confirmationSuffix tells the user that anything but an explicit yes means no.
const confirmationSuffix = " [y/N]: "

// Prompter asks the user a yes/no question. Implementations must treat
// anything other than an explicit yes as a refusal.
type Prompter interface {
	Confirm(question string) (bool, error)
}

// IOConfirmationPrompter asks questions on a writer and reads one answer
// line per question from a reader.
type IOConfirmationPrompter struct {
	answers *bufio.Scanner
	out     io.Writer
}

// NewIOConfirmationPrompter constructs a prompter; a nil output discards the questions.
func NewIOConfirmationPrompter(input io.Reader, output io.Writer) *IOConfirmationPrompter {
	if output == nil {
		output = io.Discard
	}
	return &IOConfirmationPrompter{answers: bufio.NewScanner(input), out: output}
}

// Confirm prints question followed by " [y/N]: " and reports whether the
// answer was affirmative. End of input counts as no.
func (p *IOConfirmationPrompter) Confirm(question string) (bool, error) {
	if _, err := fmt.Fprint(p.out, question, confirmationSuffix); err != nil {
		return false, fmt.Errorf("failed to write question: %w", err)
	}
	if !p.answers.Scan() {
		if err := p.answers.Err(); err != nil {
			return false, fmt.Errorf("failed to read answer: %w", err)
		}
		return false, nil
	}
	return isAffirmative(p.answers.Text()), nil
}

func isAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
