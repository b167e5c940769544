package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when input is missing and stdin is not a terminal.
var ErrNotInteractive = errors.New("stdin is not a terminal, pass the value as a flag")

// IsInteractive reports whether stdin is attached to a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Field is one value to prompt for when it was not supplied as a flag.
type Field struct {
	Title    string
	Value    *string
	Secret   bool
	Optional bool
}

// PromptMissing asks for every field whose value is still empty. Nothing is
// shown when all fields are already filled.
func PromptMissing(fields ...Field) error {
	var inputs []huh.Field
	for _, f := range fields {
		if *f.Value != "" {
			continue
		}
		input := huh.NewInput().Title(f.Title).Value(f.Value)
		if f.Secret {
			input = input.EchoMode(huh.EchoModePassword)
		}
		if !f.Optional {
			title := f.Title
			input = input.Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("%s is required", strings.ToLower(title))
				}
				return nil
			})
		}
		inputs = append(inputs, input)
	}
	if len(inputs) == 0 {
		return nil
	}
	if !IsInteractive() {
		return ErrNotInteractive
	}

	form := huh.NewForm(huh.NewGroup(inputs...)).WithTheme(huh.ThemeDracula())
	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// Confirm asks a yes/no question. Non-interactive sessions get defaultValue.
func Confirm(message string, defaultValue bool) (bool, error) {
	if !IsInteractive() {
		return defaultValue, nil
	}
	confirmed := defaultValue
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(message).Value(&confirmed),
	)).WithTheme(huh.ThemeDracula())
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return confirmed, nil
}
