package sql

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

type ConnectionState int

const (
	// StateIdle means no statement is in flight.
	StateIdle ConnectionState = iota
	// StateSent means a statement was written and no output has arrived yet.
	StateSent
	// StateWaiting means output is arriving and the sentinel has not.
	StateWaiting
	// StateFatal means the process died or its input broke.
	StateFatal
	// StateClosed means Close was called.
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSent:
		return "sent"
	case StateWaiting:
		return "waiting"
	case StateFatal:
		return "fatal"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Connection owns one shell process and the output of the statement in
// flight. Statements are strictly serialized.
type Connection struct {
	buffers      *sync.Pool
	closeTimeout time.Duration
	closing      chan struct{}
	cmd          *exec.Cmd
	command      string
	complete     chan struct{}
	database     string
	dialect      Dialect
	exited       chan struct{}
	fatalErr     error
	frame        *Frame
	id           string
	marker       []byte
	mutex        *sync.Mutex
	semaphore    *semaphore.Weighted
	sentinel     []byte
	state        ConnectionState
	stdin        io.WriteCloser
	writer       *bufio.Writer
}

// outputWriter receives everything the shell writes to stdout and stderr.
// Both streams share one pipe, so their relative order is preserved.
type outputWriter struct {
	connection *Connection
}

func (w *outputWriter) Write(p []byte) (int, error) {
	c := w.connection

	c.mutex.Lock()
	defer c.mutex.Unlock()

	switch c.state {
	case StateSent:
		c.state = StateWaiting
	case StateWaiting:
		if c.frame.IsComplete() {
			log.Printf("connection %s: discarding %d bytes after the sentinel", c.id, len(p))
			return len(p), nil
		}
	case StateIdle:
		log.Printf("connection %s: discarding %d bytes received while idle: %q", c.id, len(p), p)
		return len(p), nil
	default:
		return len(p), nil
	}

	c.frame.Write(p)

	if c.frame.IsComplete() {
		select {
		case c.complete <- struct{}{}:
		default:
		}
	}

	return len(p), nil
}

// Open starts the shell described by config and runs the dialect's setup
// statements on it.
func Open(ctx context.Context, config Config) (*Connection, error) {
	resolved, err := config.resolve()

	if err != nil {
		return nil, err
	}

	id := uuid.New()
	dialect := resolved.dialect
	sentinel := dialect.Sentinel(strings.ReplaceAll(id.String(), "-", ""))

	cmd := exec.Command(resolved.command, resolved.args...)
	cmd.WaitDelay = resolved.closeTimeout

	if len(resolved.env) > 0 {
		cmd.Env = append(os.Environ(), resolved.env...)
	}

	c := &Connection{
		buffers: &sync.Pool{
			New: func() interface{} {
				return &bytes.Buffer{}
			},
		},
		closeTimeout: resolved.closeTimeout,
		closing:      make(chan struct{}),
		cmd:          cmd,
		command:      resolved.command,
		complete:     make(chan struct{}, 1),
		database:     resolved.database,
		dialect:      dialect,
		exited:       make(chan struct{}),
		frame:        NewFrame(sentinel),
		id:           id.String(),
		marker:       dialect.CompletionMarker(sentinel),
		mutex:        &sync.Mutex{},
		semaphore:    semaphore.NewWeighted(1),
		sentinel:     sentinel,
		state:        StateIdle,
	}

	output := &outputWriter{connection: c}
	cmd.Stdout = output
	cmd.Stderr = output

	stdin, err := cmd.StdinPipe()

	if err != nil {
		return nil, &SpawnError{Command: resolved.command, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Command: resolved.command, Err: err}
	}

	c.stdin = stdin
	c.writer = bufio.NewWriterSize(stdin, 4096)

	go c.wait()

	for _, statement := range dialect.SetupStatements() {
		response, err := c.Execute(ctx, statement)

		if err == nil && response.IsError() {
			err = &EngineError{Message: response.Error}
		}

		if err != nil {
			c.Close()

			return nil, fmt.Errorf("setup statement %q: %w", statement, err)
		}
	}

	return c, nil
}

func (c *Connection) wait() {
	err := c.cmd.Wait()

	c.mutex.Lock()

	if c.state != StateClosed {
		if err == nil {
			err = errors.New("process exited")
		}

		log.Printf("connection %s: %s: %v", c.id, c.command, err)

		c.state = StateFatal
		c.fatalErr = err
	}

	c.mutex.Unlock()

	close(c.exited)
}

// Execute runs one statement and waits for its output. An error reported by
// the engine is returned in the response and leaves the connection usable.
//
// If ctx is done before the output is complete the connection is closed,
// because the shell cannot be interrupted mid-statement without losing
// track of where the next statement's output starts.
func (c *Connection) Execute(ctx context.Context, statement string) (QueryResponse, error) {
	return c.Send(ctx, NewQuery(statement))
}

func (c *Connection) Send(ctx context.Context, query Query) (QueryResponse, error) {
	if err := c.semaphore.Acquire(ctx, 1); err != nil {
		return QueryResponse{}, err
	}

	defer c.semaphore.Release(1)

	c.mutex.Lock()

	if err := c.usableLocked(); err != nil {
		c.mutex.Unlock()
		return QueryResponse{}, err
	}

	// Drop a stale completion signal and any output nobody asked for.
	select {
	case <-c.complete:
	default:
	}

	c.frame.Reset()
	c.state = StateSent
	c.mutex.Unlock()

	if err := c.send(query); err != nil {
		c.fail(err)
		return QueryResponse{}, err
	}

	select {
	case <-c.complete:
	case <-c.closing:
		return QueryResponse{}, ErrConnectionClosed
	case <-c.exited:
		c.mutex.Lock()
		complete := c.frame.IsComplete()
		c.mutex.Unlock()

		if !complete {
			return QueryResponse{}, c.closedError()
		}
	case <-ctx.Done():
		log.Printf("connection %s: query %s abandoned: %v", c.id, query.ID, ctx.Err())
		c.Close()

		return QueryResponse{}, fmt.Errorf("%w: %w", ErrConnectionClosed, ctx.Err())
	}

	c.mutex.Lock()
	output := bytes.Clone(c.frame.Bytes())
	c.frame.Reset()

	if c.state == StateSent || c.state == StateWaiting {
		c.state = StateIdle
	}

	c.mutex.Unlock()

	response, err := QueryResponseDecoder(output, c.sentinel, c.dialect)

	if err != nil {
		log.Printf("connection %s: query %s: %v", c.id, query.ID, err)
	}

	return response, err
}

func (c *Connection) send(query Query) error {
	outputBuffer := c.buffers.Get().(*bytes.Buffer)
	defer c.buffers.Put(outputBuffer)

	request := QueryRequestEncoder(query.Statement, c.marker, c.dialect, outputBuffer)

	if _, err := c.writer.Write(request); err != nil {
		return &TransmitError{Err: err}
	}

	if err := c.writer.Flush(); err != nil {
		return &TransmitError{Err: err}
	}

	return nil
}

func (c *Connection) fail(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state == StateClosed {
		return
	}

	log.Printf("connection %s: %v", c.id, err)

	c.state = StateFatal
	c.fatalErr = err
}

func (c *Connection) usableLocked() error {
	switch c.state {
	case StateClosed:
		return ErrConnectionClosed
	case StateFatal:
		return fmt.Errorf("%w: %w", ErrConnectionClosed, c.fatalErr)
	}

	return nil
}

func (c *Connection) closedError() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := c.usableLocked(); err != nil {
		return err
	}

	return ErrConnectionClosed
}

// Close closes the shell's input and waits for it to exit, killing it if it
// does not exit within the close timeout. A statement waiting for output
// returns ErrConnectionClosed. Closing twice is a no-op.
func (c *Connection) Close() error {
	c.mutex.Lock()

	if c.state == StateClosed {
		c.mutex.Unlock()
		return nil
	}

	c.state = StateClosed
	close(c.closing)
	c.mutex.Unlock()

	err := c.stdin.Close()

	select {
	case <-c.exited:
	case <-time.After(c.closeTimeout):
		log.Printf("connection %s: %s did not exit after %s, killing", c.id, c.command, c.closeTimeout)

		if killErr := c.cmd.Process.Kill(); killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
			err = errors.Join(err, killErr)
		}

		<-c.exited
	}

	c.mutex.Lock()
	c.frame.Reset()
	c.mutex.Unlock()

	if errors.Is(err, os.ErrClosed) {
		return nil
	}

	return err
}

func (c *Connection) Database() string {
	return c.database
}

func (c *Connection) Dialect() Dialect {
	return c.dialect
}

func (c *Connection) ID() string {
	return c.id
}

// IsUsable reports whether the connection can run another statement.
func (c *Connection) IsUsable() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.usableLocked() == nil
}

func (c *Connection) State() ConnectionState {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.state
}
