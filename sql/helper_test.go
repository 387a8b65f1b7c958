package sql

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"
)

// FakeShellConfig starts the test binary as a scripted psql stand-in. It
// answers the statements listed in TestHelperProcess and echoes the
// completion marker like psql's \echo.
func FakeShellConfig() Config {
	return Config{
		Dialect:      "postgres",
		Command:      os.Args[0],
		Args:         []string{"-test.run=^TestHelperProcess$"},
		Env:          []string{"GO_WANT_HELPER_PROCESS=1"},
		CloseTimeout: 2 * time.Second,
	}
}

var fakeShellResponses = map[string]string{
	"SELECT 1, 'x', NULL;": "1\tx\t\\N\n",
	"SELECT 1;":            "1\n",
	"MULTI;":               "1\tone\n2\ttwo\n3\t\\N\n",
	"EMPTY;":               "",
	"GARBAGE;":             "1\t99999999999999999999999\n",
	"BEGIN;":               "",
	"COMMIT;":              "",
	"ROLLBACK;":            "",
}

// TestHelperProcess reads its input like psql: meta commands run as soon as
// their line is read, SQL lines are buffered until one ends with a
// semicolon. Line comments are stripped.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	counted := 0
	pending := []string{}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, `\echo `):
			fmt.Fprintln(os.Stdout, strings.TrimPrefix(line, `\echo `))
			continue
		case strings.HasPrefix(line, `\set `):
			continue
		}

		if before, _, ok := strings.Cut(line, "--"); ok {
			line = strings.TrimSpace(before)
		}

		if line != "" {
			pending = append(pending, line)
		}

		if !strings.HasSuffix(line, ";") {
			continue
		}

		statement := strings.ReplaceAll(strings.Join(pending, " "), " ;", ";")
		pending = pending[:0]

		switch statement {
		case ";":
		case "SELEC 1;":
			fmt.Fprintln(os.Stderr, `ERROR:  syntax error at or near "SELEC"`)
		case "COUNT;":
			counted++
			time.Sleep(5 * time.Millisecond)
			fmt.Fprintf(os.Stdout, "%d\n", counted)
		case "LATE;":
			go func() {
				time.Sleep(20 * time.Millisecond)
				fmt.Fprintln(os.Stderr, "ERROR:  canceling statement due to user request")
			}()
		case "HANG;":
			io.Copy(io.Discard, os.Stdin)
			os.Exit(0)
		case "IGNORE_EOF;":
			time.Sleep(time.Hour)
		case "EXIT;":
			os.Exit(3)
		default:
			response, ok := fakeShellResponses[statement]

			if !ok {
				fmt.Fprintf(os.Stderr, "ERROR:  unknown statement %q\n", statement)
				continue
			}

			os.Stdout.WriteString(response)
		}
	}

	os.Exit(0)
}
