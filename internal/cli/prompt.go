package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// stdin is shared by all prompts so a piped stdin can answer several
// prompts in sequence.
var stdin = bufio.NewReader(os.Stdin)

// readPassword prompts for a password with terminal echo disabled. When
// stdin is not a terminal (scripts, pipes) it falls back to a plain line
// read.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := stdin.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPasswordConfirmed prompts for a password twice and retries until both
// entries match.
func readPasswordConfirmed(prompt string) (string, error) {
	for {
		first, err := readPassword(prompt)
		if err != nil {
			return "", err
		}

		second, err := readPassword("Confirm password: ")
		if err != nil {
			return "", err
		}

		if first == second {
			return first, nil
		}
		fmt.Println("Passwords do not match, please try again.")
	}
}

// confirm asks a yes/no question and returns true only on an explicit yes.
func confirm(question string) (bool, error) {
	fmt.Printf("%s [y/N]: ", question)

	input, err := stdin.ReadString('\n')
	if err != nil {
		return false, err
	}

	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes", nil
}
