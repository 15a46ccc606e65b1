package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"shotcraft/internal/auth"
	"shotcraft/pkg/logger"
)

// LoginCommand exchanges credentials for a token and persists it.
func LoginCommand(ctx context.Context, app *App, username, password string) error {
	var err error
	if username == "" {
		if username, err = promptLine("Username: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = promptLine("Password: "); err != nil {
			return err
		}
	}

	if !app.Session.Login(ctx, username, password) {
		return fmt.Errorf("login failed: %s", app.Session.LastError())
	}

	user := app.Session.User()
	logger.Infof("Logged in as %s", user.Username)
	return nil
}

// RegisterCommand creates a new account and then logs in with it.
func RegisterCommand(ctx context.Context, app *App, username, password, confirm string) error {
	var err error
	if username == "" {
		if username, err = promptLine("Username: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = promptLine("Password: "); err != nil {
			return err
		}
	}
	if confirm == "" {
		if confirm, err = promptLine("Confirm password: "); err != nil {
			return err
		}
	}

	if !app.Session.Register(ctx, username, password, confirm) {
		return fmt.Errorf("registration failed: %s", app.Session.LastError())
	}
	logger.Infof("Account %s created", username)

	if !app.Session.Login(ctx, username, password) {
		return fmt.Errorf("account created but login failed: %s", app.Session.LastError())
	}
	logger.Infof("Logged in as %s", username)
	return nil
}

// LogoutCommand clears the stored credential. Always succeeds locally; no
// network call is made.
func LogoutCommand(app *App) error {
	app.Session.Logout()
	logger.Infof("Logged out")
	return nil
}

// WhoamiCommand prints the current authentication state.
func WhoamiCommand(ctx context.Context, app *App) error {
	app.Session.Init(ctx)

	switch auth.Decide(app.Session.State()) {
	case auth.Render:
		fmt.Printf("Logged in as %s (server: %s)\n", app.Session.User().Username, app.Config.ServerURL)
	case auth.RedirectToLogin:
		if msg := app.Session.LastError(); msg != "" {
			fmt.Println(msg)
		} else {
			fmt.Println("Not logged in")
		}
	default:
		fmt.Println("Checking...")
	}
	return nil
}

func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
