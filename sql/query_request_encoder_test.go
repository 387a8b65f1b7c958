package sql

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryRequestEncoder(t *testing.T) {
	marker := []byte(`\echo __shellsql_x__`)

	tests := []struct {
		dialect   Dialect
		statement string
		expected  string
	}{
		{Postgres{}, "SELECT 1", "SELECT 1\n;\n\\echo __shellsql_x__\n"},
		{Postgres{}, "SELECT 1;\n\n", "SELECT 1;\n\\echo __shellsql_x__\n"},
		{Postgres{}, "SELECT 1 -- note", "SELECT 1 -- note\n;\n\\echo __shellsql_x__\n"},
		{Postgres{}, "SELECT 1 -- note;", "SELECT 1 -- note;\n;\n\\echo __shellsql_x__\n"},
		{Postgres{}, "SELECT 1; -- note", "SELECT 1; -- note\n\\echo __shellsql_x__\n"},
		{Postgres{}, "SELECT 1 /* ; */", "SELECT 1 /* ; */\n;\n\\echo __shellsql_x__\n"},
		{Postgres{}, "SELECT ';'", "SELECT ';'\n;\n\\echo __shellsql_x__\n"},
		{Postgres{}, `\set VERBOSITY terse`, "\\set VERBOSITY terse\n\\echo __shellsql_x__\n"},
		{Postgres{}, "  ", "\\echo __shellsql_x__\n"},
		{SQLite{}, ".headers off", ".headers off\n\\echo __shellsql_x__\n"},
		{SQLite{}, "SELECT 1 -- trailing comment", "SELECT 1 -- trailing comment\n;\n\\echo __shellsql_x__\n"},
		{MySQL{}, "SELECT 1", "SELECT 1\n;\n\\echo __shellsql_x__\n"},
		{MySQL{}, "SELECT 1; -- note", "SELECT 1; -- note\n\\echo __shellsql_x__\n"},
		{MySQL{}, `SELECT 'a\';'`, "SELECT 'a\\';'\n;\n\\echo __shellsql_x__\n"},
	}

	buffer := &bytes.Buffer{}

	for _, test := range tests {
		request := QueryRequestEncoder(test.statement, marker, test.dialect, buffer)
		assert.Equal(t, test.expected, string(request), test.statement)
	}
}

func TestIsTerminated(t *testing.T) {
	tests := []struct {
		query            string
		backslashEscapes bool
		terminated       bool
	}{
		{"SELECT 1;", false, true},
		{"SELECT 1 ;  \n", false, true},
		{"SELECT 1", false, false},
		{"SELECT 1; -- done", false, true},
		{"SELECT 1 -- done;", false, false},
		{"SELECT 1; /* done */", false, true},
		{"SELECT 1 /* ; */", false, false},
		{"SELECT ';'", false, false},
		{`SELECT "a;"`, false, false},
		{`SELECT 'a\';'`, true, false},
		{`SELECT 'a\'';`, true, true},
		{"", false, false},
	}

	for _, test := range tests {
		assert.Equal(t, test.terminated, isTerminated(test.query, test.backslashEscapes), test.query)
	}
}
