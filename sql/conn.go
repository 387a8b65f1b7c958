package sql

import (
	"context"
	"database/sql/driver"
	"errors"
)

type Conn struct {
	connection  *Connection
	transaction *Transaction
}

func NewConn(connection *Connection) *Conn {
	return &Conn{
		connection: connection,
	}
}

func (c *Conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *Conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if opts.ReadOnly || opts.Isolation != driver.IsolationLevel(0) {
		return nil, errors.Join(ErrNotSupported, errors.New("transaction options"))
	}

	if c.transaction != nil {
		return nil, errors.New("transaction already in progress")
	}

	if _, err := c.run(ctx, c.connection.Dialect().Begin(), nil); err != nil {
		return nil, err
	}

	c.transaction = NewTransaction(c)

	return c.transaction, nil
}

func (c *Conn) Close() error {
	return c.connection.Close()
}

func (c *Conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	response, err := c.run(ctx, query, args)

	if err != nil {
		return nil, err
	}

	return NewResult(response.Rows), nil
}

func (c *Conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	response, err := c.run(ctx, query, args)

	if err != nil {
		return nil, err
	}

	return NewRows(c.connection.Dialect(), response.Rows), nil
}

// IsValid lets database/sql drop connections whose shell is gone.
func (c *Conn) IsValid() bool {
	return c.connection.IsUsable()
}

// Ping runs a trivial statement through the shell.
func (c *Conn) Ping(ctx context.Context) error {
	_, err := c.run(ctx, "SELECT 1", nil)

	return err
}

func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return NewStatement(c, query), nil
}

func (c *Conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	return c.Prepare(query)
}

func (c *Conn) ResetSession(ctx context.Context) error {
	if !c.connection.IsUsable() {
		return driver.ErrBadConn
	}

	return nil
}

// run interpolates args, executes the statement and turns an engine error
// into an *EngineError.
func (c *Conn) run(ctx context.Context, query string, args []driver.NamedValue) (QueryResponse, error) {
	if !c.connection.IsUsable() {
		return QueryResponse{}, driver.ErrBadConn
	}

	statement, err := interpolateParameters(query, args, c.connection.Dialect())

	if err != nil {
		return QueryResponse{}, err
	}

	response, err := c.connection.Execute(ctx, statement)

	if err != nil {
		return QueryResponse{}, err
	}

	if response.IsError() {
		return QueryResponse{}, &EngineError{Message: response.Error}
	}

	return response, nil
}
