package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gameshelf/internal/client/apiclient"
	"github.com/dmitrijs2005/gameshelf/internal/common"
)

// Input seams, replaced in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

func (a *App) readCredentials() (string, []byte, error) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}

func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return a.report("Registration", err)
	}
	defer common.WipeByteArray(password)

	s, err := a.api.Register(ctx, userName, string(password))
	if err != nil {
		return a.report("Registration", err)
	}

	a.setUser(s.UserName)
	fmt.Fprintf(a.out, "User %s registered and logged in\n", s.UserName)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return a.report("Login", err)
	}
	defer common.WipeByteArray(password)

	s, err := a.api.Login(ctx, userName, string(password))
	if errors.Is(err, apiclient.ErrUnauthorized) {
		fmt.Fprintln(a.out, "Login failed: bad username or password")
		return err
	}
	if err != nil {
		return a.report("Login", err)
	}

	a.setUser(s.UserName)
	fmt.Fprintf(a.out, "Login successful, session valid until %s\n", s.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	user, err := a.api.Me(ctx)
	if err != nil {
		return a.report("Whoami", err)
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", user)
	return nil
}

// Logout forgets the local session even when the server call fails.
func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	a.setUser("")
	if err != nil && !errors.Is(err, apiclient.ErrUnauthorized) {
		return a.report("Logout", err)
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// DeleteMe asks the user to retype their username before deleting the
// account.
func (a *App) DeleteMe(ctx context.Context) error {
	a.mu.Lock()
	current := a.userName
	a.mu.Unlock()

	confirm, err := getSimpleText(a.reader, fmt.Sprintf("Type %q to delete your account", current), a.out)
	if err != nil {
		return a.report("Deletion", err)
	}
	if confirm != current {
		fmt.Fprintln(a.out, "Deletion cancelled")
		return nil
	}

	msg, err := a.api.DeleteMe(ctx)
	if err != nil {
		return a.report("Deletion", err)
	}

	a.setUser("")
	fmt.Fprintln(a.out, msg)
	return nil
}

// report prints a failed action and returns err. A rejected token means the
// session is gone, so the local login state is dropped too.
func (a *App) report(action string, err error) error {
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &apiErr):
		fmt.Fprintf(a.out, "%s failed: %s\n", action, apiErr.Msg)
	case errors.Is(err, apiclient.ErrUnauthorized):
		a.setUser("")
		fmt.Fprintln(a.out, "Session expired, please log in again")
	case errors.Is(err, apiclient.ErrUnavailable):
		a.setMode(ModeOffline)
		fmt.Fprintf(a.out, "%s failed: server unavailable\n", action)
	default:
		fmt.Fprintf(a.out, "%s failed: %v\n", action, err)
	}
	return err
}
