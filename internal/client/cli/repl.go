package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. *App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Games(ctx context.Context) error
	AddGame(ctx context.Context) error
	SetCover(ctx context.Context) error
	Cover(ctx context.Context) error
	Logout(ctx context.Context) error
	DeleteMe(ctx context.Context) error
}

// runREPL reads commands line by line from in and dispatches them to a. It
// returns on EOF, on "exit" or "quit", or when ctx is cancelled.
//
//	Not logged in: help, register, login, exit
//	Logged in:     help, whoami, games, addgame, setcover, cover, logout, deleteme, exit
//
// Handler errors are reported by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("gs %s> ", statusFn()))

		line, err := in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, games, addgame, setcover, cover, logout, deleteme, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "whoami", "games", "g", "addgame", "setcover", "cover", "logout", "deleteme":
			if !a.isLoggedIn() {
				printlnFn("Not logged in, use login or register first")
				continue
			}
			switch cmd {
			case "whoami":
				_ = a.WhoAmI(ctx)
			case "games", "g":
				_ = a.Games(ctx)
			case "addgame":
				_ = a.AddGame(ctx)
			case "setcover":
				_ = a.SetCover(ctx)
			case "cover":
				_ = a.Cover(ctx)
			case "logout":
				_ = a.Logout(ctx)
			case "deleteme":
				_ = a.DeleteMe(ctx)
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if errors.Is(err, io.EOF) {
			return
		}
	}
}
