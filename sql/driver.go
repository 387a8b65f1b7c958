package sql

import (
	"context"
	stdsql "database/sql"
	"database/sql/driver"
)

// DriverName is the name the driver registers with database/sql.
const DriverName = "shellsql"

type Driver struct{}

func init() {
	stdsql.Register(DriverName, &Driver{})
}

// Open starts a new shell for the connection string name. database/sql
// uses OpenConnector instead, which parses name once.
func (d *Driver) Open(name string) (driver.Conn, error) {
	connector, err := d.OpenConnector(name)

	if err != nil {
		return nil, err
	}

	return connector.Connect(context.Background())
}

func (d *Driver) OpenConnector(name string) (driver.Connector, error) {
	// Parse the connection string
	config, err := ParseDSN(name)

	if err != nil {
		return nil, err
	}

	return &Connector{
		driver: d,
		config: config,
	}, nil
}
