// Package editor launches the user's preferred text editor.
package editor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNoEditor is returned when no editor command could be determined.
var ErrNoEditor = errors.New("no editor found")

// Editor runs an editor command against a path.
type Editor struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	lookPath func(string) (string, error)
}

// New returns an Editor attached to the process's standard streams.
func New() *Editor {
	return &Editor{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		lookPath: exec.LookPath,
	}
}

// Open launches the editor for path and waits for it to exit.
// The command comes from $EDITOR, then $VISUAL, then nano, then vi, and
// may carry arguments such as "code --wait".
func (e *Editor) Open(ctx context.Context, path string) error {
	argv := e.command()
	if len(argv) == 0 {
		return ErrNoEditor
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", argv[0])
	}
	return nil
}

func (e *Editor) command() []string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return fields
		}
	}
	for _, name := range []string{"nano", "vi"} {
		if _, err := e.lookPath(name); err == nil {
			return []string{name}
		}
	}
	return nil
}
