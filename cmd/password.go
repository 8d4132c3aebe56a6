package cmd

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/illarion/secretstore/internal/crypto"
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ReadPassword reads a password from the terminal without echoing
func ReadPassword(tty *os.File, prompt io.Writer, message string) ([]byte, error) {
	fmt.Fprint(prompt, message)

	// Read password without echo
	password, err := term.ReadPassword(int(tty.Fd()))
	fmt.Fprintln(prompt) // New line after password

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) == 0 {
		return nil, fmt.Errorf("password must not be empty")
	}

	return password, nil
}

// ReadPasswordConfirm reads a password twice and ensures they match
func ReadPasswordConfirm(tty *os.File, prompt io.Writer) ([]byte, error) {
	password1, err := ReadPassword(tty, prompt, "Enter new password: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password1)

	password2, err := ReadPassword(tty, prompt, "Confirm new password: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password2)

	if !crypto.ConstantTimeCompare(password1, password2) {
		return nil, fmt.Errorf("passwords do not match")
	}

	// Return a copy of the password
	result := make([]byte, len(password1))
	copy(result, password1)
	return result, nil
}
