// Command password_tool resets an account password directly in users.json,
// for recovery when no admin can log in. Run it with the server stopped.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"eassist/internal/auth"
	"eassist/internal/config"
)

func main() {
	configPath := flag.String("config", "eassist.config.json", "path to the configuration file")
	username := flag.String("username", "admin", "username to update or create")
	password := flag.String("password", "", "new password (leave blank to type securely)")
	flag.Parse()

	if strings.TrimSpace(*username) == "" {
		fmt.Fprintln(os.Stderr, "username cannot be empty")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	usersPath := filepath.Join(cfg.DataDir, "users.json")
	store := auth.NewUserStore(usersPath)
	if err := store.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load users.json: %v\n", err)
		os.Exit(1)
	}

	pwd, err := resolvePassword(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "password error: %v\n", err)
		os.Exit(1)
	}

	if err := store.SetPassword(*username, pwd); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			if _, createErr := store.Create(*username, pwd, "", "", auth.RoleAdmin); createErr != nil {
				fmt.Fprintf(os.Stderr, "failed to create user: %v\n", createErr)
				os.Exit(1)
			}
			fmt.Printf("Created user %s with admin role.\n", *username)
		} else {
			fmt.Fprintf(os.Stderr, "failed to update password: %v\n", err)
			os.Exit(1)
		}
	} else {
		if unlockErr := store.Unlock(*username); unlockErr != nil {
			fmt.Fprintf(os.Stderr, "failed to clear lockout: %v\n", unlockErr)
			os.Exit(1)
		}
		fmt.Printf("Updated password for %s.\n", *username)
	}

	fmt.Printf("users.json: %s\n", usersPath)
}

func resolvePassword(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed != "" {
		if len(trimmed) < 8 {
			return "", fmt.Errorf("password must be at least 8 characters")
		}
		return trimmed, nil
	}

	first, err := promptPassword("Enter new password: ")
	if err != nil {
		return "", err
	}
	second, err := promptPassword("Confirm password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(first) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters")
	}
	return first, nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		bytes, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytes)), nil
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
