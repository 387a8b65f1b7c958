package sql

import "github.com/google/uuid"

// Query is one statement submitted to a connection. The ID only serves to
// correlate log lines.
type Query struct {
	ID        string
	Statement string
}

func NewQuery(statement string) Query {
	return Query{
		ID:        uuid.NewString(),
		Statement: statement,
	}
}
