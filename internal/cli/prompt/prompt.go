// Package prompt asks the operator to confirm destructive commands.
package prompt

import (
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// ErrAborted is returned when the user aborts a prompt (Ctrl+C).
var ErrAborted = errors.New("aborted")

// ErrNotInteractive is returned when confirmation is needed but stdin is
// not a terminal.
var ErrNotInteractive = errors.New("confirmation required: rerun with --force in non-interactive mode")

// interactive reports whether prompts can be shown. Tests replace it.
var interactive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ConfirmDanger asks the user to type word to proceed.
func ConfirmDanger(label, word string) (bool, error) {
	if !interactive() {
		return false, ErrNotInteractive
	}

	p := promptui.Prompt{
		Label: fmt.Sprintf("%s (type '%s' to confirm)", label, word),
		Validate: func(input string) error {
			if input != word {
				return fmt.Errorf("type '%s' to confirm", word)
			}
			return nil
		},
	}

	result, err := p.Run()
	switch {
	case errors.Is(err, promptui.ErrInterrupt):
		return false, ErrAborted
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	case err != nil:
		return false, err
	}
	return result == word, nil
}

// ConfirmWithForce skips the prompt when force is set.
func ConfirmWithForce(label, word string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return ConfirmDanger(label, word)
}
