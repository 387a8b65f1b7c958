package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/olekukonko/tablewriter"

	shellsql "github.com/litebase/shellsql-go/sql"
)

func formatColumn(column shellsql.Column) string {
	switch v := column.Value.(type) {
	case nil:
		return "NULL"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return v
	case []byte:
		return fmt.Sprintf("X'%X'", v)
	default:
		return fmt.Sprint(v)
	}
}

func printRows(w io.Writer, rows [][]shellsql.Column) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no results)")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	header := []string{}
	for i := 0; i < width; i++ {
		header = append(header, fmt.Sprintf("column%d", i+1))
	}
	table.SetHeader(header)

	for _, row := range rows {
		cells := make([]string, width)
		for i, column := range row {
			cells[i] = formatColumn(column)
		}

		table.Append(cells)
	}

	table.Render()

	if len(rows) == 1 {
		fmt.Fprintln(w, "(1 result)")
	} else {
		fmt.Fprintf(w, "(%d results)\n", len(rows))
	}
}

// RunRepl reads statements until EOF or \q and runs each one on connection.
// Engine and decode errors are printed; an unusable connection ends the
// loop with an error.
func RunRepl(connection *shellsql.Connection, timeout time.Duration) error {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".shellsql_history")
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:          connection.Dialect().Name() + "# ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer l.Close()

	fmt.Printf("Welcome to shellsql (%s).\n", connection.Dialect().Name())

repl:
	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}

			continue repl
		} else if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Println("Error while reading line:", err)
			continue repl
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if trimmed == "quit" || trimmed == "exit" || trimmed == "\\q" {
			break
		}

		ctx, cancel := statementContext(timeout)
		response, err := connection.Execute(ctx, trimmed)
		cancel()

		var decodeErr *shellsql.DecodeError

		switch {
		case errors.As(err, &decodeErr):
			fmt.Println("Error decoding output:", err)
			continue repl
		case err != nil:
			return fmt.Errorf("connection lost: %w", err)
		case response.IsError():
			fmt.Println("ERROR:", response.Error)
			continue repl
		}

		printRows(os.Stdout, response.Rows)
	}

	return nil
}
