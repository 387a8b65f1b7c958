package sql

import (
	"context"
	"database/sql/driver"
)

type Connector struct {
	driver driver.Driver
	config Config
}

// NewConnector returns a connector for use with database/sql.OpenDB.
func NewConnector(config Config) *Connector {
	return &Connector{
		driver: &Driver{},
		config: config,
	}
}

// Connect starts one shell process per connection.
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	connection, err := Open(ctx, c.config)

	if err != nil {
		return nil, err
	}

	return NewConn(connection), nil
}

func (c *Connector) Driver() driver.Driver {
	return c.driver
}
