package sql

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openFakeShell(t *testing.T) *Connection {
	t.Helper()

	connection, err := Open(context.Background(), FakeShellConfig())
	require.NoError(t, err)

	t.Cleanup(func() {
		connection.Close()
	})

	return connection
}

func TestConnectionExecute(t *testing.T) {
	connection := openFakeShell(t)

	response, err := connection.Execute(context.Background(), "SELECT 1, 'x', NULL")
	require.NoError(t, err)
	assert.False(t, response.IsError())
	assert.Equal(t, [][]Column{{
		{Type: ColumnTypeInteger, Value: int64(1)},
		{Type: ColumnTypeText, Value: "x"},
		{Type: ColumnTypeNull},
	}}, response.Rows)
	assert.Equal(t, StateIdle, connection.State())

	response, err = connection.Execute(context.Background(), "MULTI;")
	require.NoError(t, err)
	assert.Len(t, response.Rows, 3)

	response, err = connection.Execute(context.Background(), "EMPTY")
	require.NoError(t, err)
	assert.Empty(t, response.Rows)
}

func TestConnectionTrailingLineComment(t *testing.T) {
	connection := openFakeShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	response, err := connection.Execute(ctx, "SELECT 1 -- trailing comment")
	require.NoError(t, err)
	assert.Equal(t, [][]Column{{{Type: ColumnTypeInteger, Value: int64(1)}}}, response.Rows)

	response, err = connection.Execute(ctx, "SELECT 1; -- already terminated")
	require.NoError(t, err)
	assert.Equal(t, [][]Column{{{Type: ColumnTypeInteger, Value: int64(1)}}}, response.Rows)

	response, err = connection.Execute(ctx, "MULTI")
	require.NoError(t, err)
	assert.Len(t, response.Rows, 3)
}

func TestConnectionDiscardsOutputWhileIdle(t *testing.T) {
	connection := openFakeShell(t)

	response, err := connection.Execute(context.Background(), "LATE")
	require.NoError(t, err)
	assert.False(t, response.IsError())

	// The shell reports an error after the statement completed.
	time.Sleep(200 * time.Millisecond)

	response, err = connection.Execute(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.False(t, response.IsError(), response.Error)
	assert.Equal(t, [][]Column{{{Type: ColumnTypeInteger, Value: int64(1)}}}, response.Rows)
}

func TestConnectionEngineErrorKeepsConnectionUsable(t *testing.T) {
	connection := openFakeShell(t)

	response, err := connection.Execute(context.Background(), "SELEC 1")
	require.NoError(t, err)
	assert.True(t, response.IsError())
	assert.Equal(t, `syntax error at or near "SELEC"`, response.Error)
	assert.Empty(t, response.Rows)

	response, err = connection.Execute(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, [][]Column{{{Type: ColumnTypeInteger, Value: int64(1)}}}, response.Rows)
}

func TestConnectionDecodeErrorKeepsConnectionUsable(t *testing.T) {
	connection := openFakeShell(t)

	_, err := connection.Execute(context.Background(), "GARBAGE")

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr), "expected *DecodeError, got %v", err)
	assert.Equal(t, "99999999999999999999999", decodeErr.Token)
	assert.Equal(t, 2, decodeErr.Position)
	assert.True(t, connection.IsUsable())

	response, err := connection.Execute(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.Len(t, response.Rows, 1)
}

func TestConnectionCloseUnblocksExecute(t *testing.T) {
	connection := openFakeShell(t)

	result := make(chan error, 1)

	go func() {
		_, err := connection.Execute(context.Background(), "HANG")
		result <- err
	}()

	require.Eventually(t, func() bool {
		state := connection.State()
		return state == StateSent || state == StateWaiting
	}, 5*time.Second, time.Millisecond)

	require.NoError(t, connection.Close())

	select {
	case err := <-result:
		assert.True(t, errors.Is(err, ErrConnectionClosed), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Execute did not return after Close")
	}

	_, err := connection.Execute(context.Background(), "SELECT 1")
	assert.True(t, errors.Is(err, ErrConnectionClosed))
	assert.Equal(t, StateClosed, connection.State())

	// A second close is a no-op.
	assert.NoError(t, connection.Close())
}

func TestConnectionContextCancelClosesConnection(t *testing.T) {
	connection := openFakeShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := connection.Execute(ctx, "HANG")
	assert.True(t, errors.Is(err, ErrConnectionClosed), "got %v", err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.False(t, connection.IsUsable())
}

func TestConnectionProcessExitIsFatal(t *testing.T) {
	connection := openFakeShell(t)

	_, err := connection.Execute(context.Background(), "EXIT")
	assert.True(t, errors.Is(err, ErrConnectionClosed), "got %v", err)
	assert.Equal(t, StateFatal, connection.State())

	_, err = connection.Execute(context.Background(), "SELECT 1")
	assert.True(t, errors.Is(err, ErrConnectionClosed), "got %v", err)

	assert.NoError(t, connection.Close())
}

func TestConnectionCloseKillsStubbornProcess(t *testing.T) {
	config := FakeShellConfig()
	config.CloseTimeout = 200 * time.Millisecond

	connection, err := Open(context.Background(), config)
	require.NoError(t, err)

	result := make(chan error, 1)

	go func() {
		_, err := connection.Execute(context.Background(), "IGNORE_EOF")
		result <- err
	}()

	require.Eventually(t, func() bool {
		return connection.State() == StateSent || connection.State() == StateWaiting
	}, 5*time.Second, time.Millisecond)

	start := time.Now()
	assert.NoError(t, connection.Close())
	assert.Less(t, int64(time.Since(start)), int64(5*time.Second))

	err = <-result
	assert.True(t, errors.Is(err, ErrConnectionClosed), "got %v", err)
}

func TestConnectionSerializesStatements(t *testing.T) {
	connection := openFakeShell(t)

	const workers = 8

	var (
		wg     sync.WaitGroup
		mutex  sync.Mutex
		counts []int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			response, err := connection.Execute(context.Background(), "COUNT")
			if !assert.NoError(t, err) || !assert.Len(t, response.Rows, 1) {
				return
			}

			mutex.Lock()
			counts = append(counts, int(response.Rows[0][0].Value.(int64)))
			mutex.Unlock()
		}()
	}

	wg.Wait()

	sort.Ints(counts)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, counts)
}

func TestOpenSpawnError(t *testing.T) {
	_, err := Open(context.Background(), Config{
		Dialect: "sqlite3",
		Command: "/nonexistent/shellsql-test-shell",
	})

	var spawnErr *SpawnError
	require.True(t, errors.As(err, &spawnErr), "expected *SpawnError, got %v", err)
	assert.Equal(t, "/nonexistent/shellsql-test-shell", spawnErr.Command)
}

func TestOpenUnknownDialect(t *testing.T) {
	_, err := Open(context.Background(), Config{Dialect: "oracle"})
	assert.True(t, errors.Is(err, ErrUnknownDialect))

	_, err = Open(context.Background(), Config{})
	assert.Error(t, err)
}
