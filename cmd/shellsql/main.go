// Command shellsql runs statements through a database's own command line
// shell and prints the decoded rows.
//
// Usage:
//
//	shellsql -dialect sqlite3 -database app.db
//	shellsql -dsn "dialect=postgres database=app"
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	shellsql "github.com/litebase/shellsql-go/sql"
)

func main() {
	var (
		dialect  = flag.String("dialect", "sqlite3", "shell dialect: "+strings.Join(shellsql.DialectNames(), ", "))
		database = flag.String("database", "", "database name or file handed to the shell")
		command  = flag.String("command", "", "shell executable, defaults to the dialect's")
		dsn      = flag.String("dsn", "", "connection string; overrides the other flags")
		timeout  = flag.Duration("timeout", 0, "per statement timeout; the connection is closed when it expires")
	)

	flag.Parse()

	config := shellsql.Config{
		Dialect:  *dialect,
		Database: *database,
		Command:  *command,
	}

	if *dsn != "" {
		var err error

		config, err = shellsql.ParseDSN(*dsn)

		if err != nil {
			fmt.Fprintln(os.Stderr, "Error parsing connection string:", err)
			os.Exit(1)
		}
	}

	connection, err := shellsql.Open(context.Background(), config)

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error opening connection:", err)
		os.Exit(1)
	}

	defer connection.Close()

	if err := RunRepl(connection, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		connection.Close()
		os.Exit(1)
	}
}

func statementContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}

	return context.WithTimeout(context.Background(), timeout)
}
