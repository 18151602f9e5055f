// Package client speaks the line protocol from the client side. A Client
// holds one session and is not safe for concurrent use.
package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DefaultTimeout is how long a single read or write on the connection may
// stall before the session fails.
const DefaultTimeout = 30 * time.Second

// helpBodyLines is the number of usage lines after "OK commands:".
const helpBodyLines = 5

// Entry is one line of a listing.
type Entry struct {
	Name string
	Dir  bool
	Size int64
}

// Client is a session with a linexfer server.
type Client struct {
	conn    net.Conn
	r       *bufio.Reader
	w       *bufio.Writer
	timeout time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets the idle timeout. Every read and write gets a fresh
// deadline, so long transfers only fail when they stop making progress.
// 0 disables deadlines.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// Dial opens a session with the server at addr.
func Dial(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return New(conn, opts...), nil
}

// New wraps an established connection.
func New(conn net.Conn, opts ...Option) *Client {
	c := &Client{conn: conn, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}

	var rw io.ReadWriter = conn
	if c.timeout > 0 {
		rw = &idleConn{Conn: conn, timeout: c.timeout}
	}
	c.r = bufio.NewReader(rw)
	c.w = bufio.NewWriter(rw)
	return c
}

// idleConn moves the deadline forward before every read and write.
type idleConn struct {
	net.Conn
	timeout time.Duration
}

func (c *idleConn) Read(p []byte) (int, error) {
	_ = c.SetDeadline(time.Now().Add(c.timeout))
	return c.Conn.Read(p)
}

func (c *idleConn) Write(p []byte) (int, error) {
	_ = c.SetDeadline(time.Now().Add(c.timeout))
	return c.Conn.Write(p)
}

// checkPath rejects paths the server would split into several arguments.
func checkPath(p string) error {
	if strings.ContainsFunc(p, unicode.IsSpace) {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidPath, p)
	}
	return nil
}

// Close drops the connection without saying goodbye.
func (c *Client) Close() error {
	return c.conn.Close()
}

// List returns the entries of dir on the server. An empty dir lists the
// root.
func (c *Client) List(dir string) ([]Entry, error) {
	if dir == "" {
		dir = "."
	}
	if err := checkPath(dir); err != nil {
		return nil, err
	}
	status, err := c.command("list " + dir)
	if err != nil {
		return nil, err
	}

	var n int
	if _, err := fmt.Sscanf(status, "OK %d entries in", &n); err != nil || n < 0 {
		return nil, fmt.Errorf("%w: unexpected list reply %q", ErrProtocol, status)
	}

	entries := make([]Entry, 0, n)
	for range n {
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		e, err := parseEntry(line)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseEntry(line string) (Entry, error) {
	kind, rest, ok := strings.Cut(line, " ")
	if !ok {
		return Entry{}, fmt.Errorf("%w: bad entry %q", ErrProtocol, line)
	}
	sizeStr, name, ok := strings.Cut(rest, " ")
	if !ok {
		return Entry{}, fmt.Errorf("%w: bad entry %q", ErrProtocol, line)
	}
	size, err := strconv.ParseInt(sizeStr, 10, 64)
	if err != nil || (kind != "d" && kind != "f") {
		return Entry{}, fmt.Errorf("%w: bad entry %q", ErrProtocol, line)
	}
	return Entry{Name: name, Dir: kind == "d", Size: size}, nil
}

// Stat finds remote in the listing of its parent directory.
func (c *Client) Stat(remote string) (Entry, error) {
	if err := checkRemote(remote); err != nil {
		return Entry{}, err
	}
	dir, name := path.Split(strings.TrimSuffix(remote, "/"))
	entries, err := c.List(dir)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrNoSuchFile, remote)
}

// Get downloads remote into w and returns the bytes copied.
//
// The server sends no length with the payload, so the size is taken from a
// listing of the parent directory first. A file that changes size between
// the two commands desynchronises the session.
func (c *Client) Get(remote string, w io.Writer) (int64, error) {
	if err := checkRemote(remote); err != nil {
		return 0, err
	}
	e, err := c.Stat(remote)
	if err != nil {
		return 0, err
	}
	if e.Dir {
		return 0, fmt.Errorf("%w: %s is a directory", ErrNoSuchFile, remote)
	}

	if _, err := c.command("get " + remote); err != nil {
		return 0, err
	}
	n, err := io.CopyN(w, c.r, e.Size)
	if err != nil {
		return n, fmt.Errorf("download of %s interrupted after %d bytes: %w", remote, n, err)
	}
	return n, nil
}

// Put uploads size bytes from r to remote and returns the count the server
// stored.
func (c *Client) Put(remote string, r io.Reader, size int64) (int64, error) {
	if err := checkRemote(remote); err != nil {
		return 0, err
	}
	if size <= 0 {
		return 0, fmt.Errorf("invalid size %d: must be positive", size)
	}
	if _, err := fmt.Fprintf(c.w, "put %s %d\n", remote, size); err != nil {
		return 0, err
	}
	if _, err := io.CopyN(c.w, r, size); err != nil {
		return 0, fmt.Errorf("failed to send %s: %w", remote, err)
	}
	if err := c.w.Flush(); err != nil {
		return 0, err
	}

	status, err := c.status()
	if err != nil {
		return 0, err
	}
	var n int64
	if _, err := fmt.Sscanf(status, "OK stored %d bytes in", &n); err != nil {
		return 0, fmt.Errorf("%w: unexpected put reply %q", ErrProtocol, status)
	}
	return n, nil
}

// Help returns the server's usage text, header included.
func (c *Client) Help() ([]string, error) {
	status, err := c.command("help")
	if err != nil {
		return nil, err
	}
	lines := []string{status}
	for range helpBodyLines {
		l, err := c.readLine()
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, nil
}

// Quit ends the session and closes the connection.
func (c *Client) Quit() error {
	defer func() { _ = c.conn.Close() }()
	status, err := c.command("quit")
	if err != nil {
		return err
	}
	if status != "BYE" {
		return fmt.Errorf("%w: unexpected quit reply %q", ErrProtocol, status)
	}
	return nil
}

// command sends line and returns the status line, or a *ServerError.
func (c *Client) command(line string) (string, error) {
	if _, err := c.w.WriteString(line + "\n"); err != nil {
		return "", err
	}
	if err := c.w.Flush(); err != nil {
		return "", err
	}
	return c.status()
}

func (c *Client) status() (string, error) {
	line, err := c.readLine()
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(line, "ERR") {
		return "", &ServerError{Line: line}
	}
	return line, nil
}

func (c *Client) readLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return "", fmt.Errorf("failed to read reply: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// checkRemote is checkPath for commands that need a file argument.
func checkRemote(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	return checkPath(p)
}
