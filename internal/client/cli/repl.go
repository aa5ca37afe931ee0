package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/siteaccounts/internal/account"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	page() account.Page
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	ConfirmEmail(ctx context.Context, code string) error
	WhoAmI(ctx context.Context) error
	Manage(ctx context.Context) error
	Logout(ctx context.Context) error
	ChangeUsername(ctx context.Context) error
	ChangeEmail(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Back(ctx context.Context) error
}

var pageHelp = map[account.Page]string{
	account.PageLogin:  "Available commands: register, login, confirm [code], exit",
	account.PageIndex:  "Available commands: whoami, manage, logout, exit",
	account.PageManage: "Available commands: username, email, password, confirm [code], close, logout, exit",
}

// runREPL starts a simple read–eval–print loop for the account CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Which commands exist depends on the current
// page; anything else is reported back to the user. The loop exits on EOF or
// when the user types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; the workflows
// report their own failures as notifications.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("sa> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(pageHelp[a.page()])
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !dispatch(ctx, a, a.page(), cmd, args) {
			printlnFn("Unknown command:", cmd)
		}
	}
}

// dispatch runs cmd if page offers it.
func dispatch(ctx context.Context, a execIface, page account.Page, cmd string, args []string) bool {
	code := ""
	if len(args) > 0 {
		code = args[0]
	}

	switch page {
	case account.PageLogin:
		switch cmd {
		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "confirm":
			_ = a.ConfirmEmail(ctx, code)
		default:
			return false
		}

	case account.PageIndex:
		switch cmd {
		case "whoami":
			_ = a.WhoAmI(ctx)
		case "manage":
			_ = a.Manage(ctx)
		case "logout":
			_ = a.Logout(ctx)
		default:
			return false
		}

	case account.PageManage:
		switch cmd {
		case "username":
			_ = a.ChangeUsername(ctx)
		case "email":
			_ = a.ChangeEmail(ctx)
		case "password":
			_ = a.ChangePassword(ctx)
		case "confirm":
			_ = a.ConfirmEmail(ctx, code)
		case "close":
			_ = a.Back(ctx)
		case "logout":
			_ = a.Logout(ctx)
		default:
			return false
		}

	default:
		return false
	}
	return true
}
