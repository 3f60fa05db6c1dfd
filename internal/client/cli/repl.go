package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	handleError(ctx context.Context, err error)

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Recover(ctx context.Context) error
	Reset(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	Show(ctx context.Context, section string) error
	Convert(ctx context.Context, path string) error
	NewVersion(ctx context.Context, docID int64) error
	Download(ctx context.Context, versionID int64) error
	Delete(ctx context.Context, docID int64) error
	Share(ctx context.Context, docID int64) error
	Sign(ctx context.Context, docID int64) error
	Check(ctx context.Context, path string) error
	RemoveLocal(ctx context.Context, id int64) error
	ExportLocal(ctx context.Context, id int64) error
	ClearLocal(ctx context.Context) error
	Simulation(ctx context.Context, arg string) error
}

const (
	helpGuest = "Available commands: register, login, recover, reset, upload, history, validate, " +
		"convert <path>, check [pdf], rmlocal <id>, export <id>, clear, sim on|off, exit"
	helpUser = "Available commands: whoami, upload, history, shared, validate, convert <path>, " +
		"version <docId>, download <versionId>, delete <docId>, share <docId>, sign <docId>, " +
		"check [pdf], rmlocal <id>, export <id>, clear, sim on|off, logout, exit"
)

// runREPL starts a read–eval–print loop for the evadocs CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. Errors returned by handlers go to
// a.handleError, which renders them; the loop itself never stops on a
// command error. It exits on EOF or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("eva %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if err := dispatch(ctx, a, cmd, args, line); err != nil {
			a.handleError(ctx, err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string, line string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn(ctx) {
			printlnFn(helpUser)
		} else {
			printlnFn(helpGuest)
		}
		return nil

	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "recover":
		return a.Recover(ctx)
	case "reset":
		return a.Reset(ctx)
	case "whoami":
		return a.WhoAmI(ctx)

	case "upload", "history", "shared", "validate":
		return a.Show(ctx, cmd)

	case "convert":
		path, err := pathArg(line, cmd, true)
		if err != nil {
			return err
		}
		return a.Convert(ctx, path)
	case "check":
		path, err := pathArg(line, cmd, false)
		if err != nil {
			return err
		}
		return a.Check(ctx, path)

	case "version", "download", "delete", "share", "sign", "rmlocal", "export":
		id, err := idArg(cmd, args)
		if err != nil {
			return err
		}
		return dispatchID(ctx, a, cmd, id)

	case "clear":
		return a.ClearLocal(ctx)
	case "sim":
		if len(args) != 1 {
			return &usageError{usage: "sim on|off"}
		}
		return a.Simulation(ctx, args[0])

	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}

func dispatchID(ctx context.Context, a execIface, cmd string, id int64) error {
	switch cmd {
	case "version":
		return a.NewVersion(ctx, id)
	case "download":
		return a.Download(ctx, id)
	case "delete":
		return a.Delete(ctx, id)
	case "share":
		return a.Share(ctx, id)
	case "sign":
		return a.Sign(ctx, id)
	case "rmlocal":
		return a.RemoveLocal(ctx, id)
	default:
		return a.ExportLocal(ctx, id)
	}
}

var idUsage = map[string]string{
	"version":  "version <docId>",
	"download": "download <versionId>",
	"delete":   "delete <docId>",
	"share":    "share <docId>",
	"sign":     "sign <docId>",
	"rmlocal":  "rmlocal <id>",
	"export":   "export <id>",
}

func idArg(cmd string, args []string) (int64, error) {
	if len(args) != 1 {
		return 0, &usageError{usage: idUsage[cmd]}
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, &usageError{usage: idUsage[cmd]}
	}
	return id, nil
}

// pathArg returns everything after the command so paths may contain
// spaces. Surrounding quotes are dropped.
func pathArg(line, cmd string, required bool) (string, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), cmd))
	rest = strings.Trim(rest, `"'`)
	if rest == "" && required {
		return "", &usageError{usage: cmd + " <path>"}
	}
	return rest, nil
}
