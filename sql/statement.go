package sql

import (
	"context"
	"database/sql/driver"
	"errors"
)

type Statement struct {
	closed bool
	conn   *Conn
	SQL    string
}

func NewStatement(conn *Conn, sql string) *Statement {
	return &Statement{
		conn: conn,
		SQL:  sql,
	}
}

func (s *Statement) Close() error {
	if s.closed {
		return errors.New("statement is already closed")
	}

	s.closed = true

	return nil
}

func (s *Statement) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), namedValues(args))
}

func (s *Statement) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	return s.conn.ExecContext(ctx, s.SQL, args)
}

func (s *Statement) NumInput() int {
	return countPlaceholders(s.SQL, s.conn.connection.Dialect().Syntax().BackslashEscapes)
}

func (s *Statement) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), namedValues(args))
}

func (s *Statement) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	return s.conn.QueryContext(ctx, s.SQL, args)
}
