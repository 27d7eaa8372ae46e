package util

import (
	"bytes"
	"fmt"
	"syscall"

	"golang.org/x/term"
)

// GetPasswd reads a password from the terminal without echoing it.
func GetPasswd(prompt string) ([]byte, error) {
	fmt.Print(prompt)
	bytepw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	return bytepw, err
}

// GetPasswdConfirm asks for the password twice and makes sure both
// entries match, so a typo does not end up as the embedding key.
func GetPasswdConfirm(prompt, confirmPrompt string) ([]byte, error) {
	first, err := GetPasswd(prompt)
	if err != nil {
		return nil, err
	}
	second, err := GetPasswd(confirmPrompt)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(first, second) == false {
		return nil, fmt.Errorf("passwords do not match")
	}
	return first, nil
}
