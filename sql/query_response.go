package sql

// QueryResponse is the outcome of one statement: either the engine's error
// message or the decoded rows, never both.
type QueryResponse struct {
	Error string
	Rows  [][]Column
}

func (r QueryResponse) IsError() bool {
	return r.Error != ""
}
