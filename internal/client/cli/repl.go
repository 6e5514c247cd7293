package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error
	Upload(ctx context.Context, args []string) error
	Files(ctx context.Context) error
	Process(ctx context.Context, args []string) error
	Retry(ctx context.Context) error
	Delete(ctx context.Context, args []string) error
	Results(ctx context.Context) error
	Result(ctx context.Context, args []string) error
	Analyze(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
}

const (
	guestHelp = "Available commands: register, login, help, exit"
	userHelp  = "Available commands: upload <path>, files, process <id> [model], retry, delete <id>, " +
		"results, result <id>, analyze [model], export <id>, stats, whoami, profile, logout, help, exit"
)

// runREPL starts a simple read–eval–print loop for the ScanPilot CLI.
//
// It reads a line from r, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  - help          : show available commands
//	  - register      : create an account
//	  - login         : authenticate
//	  - exit | quit   : leave the program
//
//	Logged in:
//	  - upload <path>         : upload a document (.pdf, .docx, .doc, .txt)
//	  - files                 : list uploads
//	  - process <id> [model]  : start analysis and follow its status
//	  - retry                 : re-process every failed upload
//	  - delete <id>           : delete an upload
//	  - results / result <id> : browse analysis results
//	  - analyze [model]       : analyse pasted text right away
//	  - export <id>           : save a result as JSON
//	  - stats                 : dashboard numbers
//	  - whoami / profile      : show or edit the profile
//	  - logout                : log out
//
// Handler errors are printed and the loop continues. A lost session is
// reported as a notice and the prompt falls back to the logged-out commands.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("scanpilot %s> ", statusFn()))

		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help":
			if a.isLoggedIn() {
				printlnFn(userHelp)
			} else {
				printlnFn(guestHelp)
			}
			continue
		case "register":
			report(a.Register(ctx))
			continue
		case "login":
			report(a.Login(ctx))
			continue
		}

		if !isUserCommand(cmd) {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if !a.isLoggedIn() {
			printlnFn("Please log in first (type 'login').")
			continue
		}

		switch cmd {
		case "logout":
			report(a.Logout(ctx))
		case "whoami":
			report(a.WhoAmI(ctx))
		case "profile":
			report(a.Profile(ctx))
		case "upload":
			report(a.Upload(ctx, args))
		case "files":
			report(a.Files(ctx))
		case "process":
			report(a.Process(ctx, args))
		case "retry":
			report(a.Retry(ctx))
		case "delete":
			report(a.Delete(ctx, args))
		case "results":
			report(a.Results(ctx))
		case "result":
			report(a.Result(ctx, args))
		case "analyze":
			report(a.Analyze(ctx, args))
		case "export":
			report(a.Export(ctx, args))
		case "stats":
			report(a.Stats(ctx))
		}
	}
}

var userCommands = map[string]struct{}{
	"logout": {}, "whoami": {}, "profile": {}, "upload": {}, "files": {},
	"process": {}, "retry": {}, "delete": {}, "results": {}, "result": {},
	"analyze": {}, "export": {}, "stats": {},
}

func isUserCommand(cmd string) bool {
	_, ok := userCommands[cmd]
	return ok
}

// usageError is returned for malformed command arguments.
type usageError string

func (e usageError) Error() string { return "usage: " + string(e) }

func report(err error) {
	var ue usageError
	switch {
	case err == nil:
	case isSessionError(err):
		// the unauthorized handler already printed a notice
		printlnFn("Please log in (type 'login').")
	case errors.As(err, &ue):
		printlnFn("Usage:", string(ue))
	default:
		printlnFn("Error:", err)
	}
}
