package sql

import "context"

type Transaction struct {
	conn *Conn
}

func NewTransaction(conn *Conn) *Transaction {
	return &Transaction{
		conn: conn,
	}
}

func (t *Transaction) Commit() error {
	return t.end("COMMIT")
}

func (t *Transaction) Rollback() error {
	return t.end("ROLLBACK")
}

func (t *Transaction) end(statement string) error {
	if t.conn.transaction == t {
		t.conn.transaction = nil
	}

	_, err := t.conn.run(context.Background(), statement, nil)

	return err
}
