package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gameshelf/internal/client/apiclient"
	"github.com/dmitrijs2005/gameshelf/internal/client/config"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// onlineCheckInterval is how often the watcher pings the server.
const onlineCheckInterval = 5 * time.Second

type App struct {
	config *config.Config
	api    apiclient.Client
	reader *bufio.Reader
	out    io.Writer

	mu       sync.Mutex
	userName string
	mode     Mode
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		api:    apiclient.NewHTTPClient(c.ServerAddr, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Run blocks in the REPL until the user exits or stdin is closed. A logged-in
// session is closed on the way out.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintf(a.out, "Welcome to GameShelf CLI, server %s (type 'help' for commands)\n", a.config.ServerAddr)

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, onlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)

	if a.isLoggedIn() {
		_ = a.Logout(ctx)
	}
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userName != ""
}

func (a *App) setUser(name string) {
	a.mu.Lock()
	a.userName = name
	a.mu.Unlock()
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		fmt.Fprintf(a.out, "Server is %s\n", mode)
	}
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.userName
	if a.mode != "" {
		if s != "" {
			s += " "
		}
		s += string(a.mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the server every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
