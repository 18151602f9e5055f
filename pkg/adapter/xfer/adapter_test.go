package xfer

import (
	"bufio"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handlers "github.com/marmos91/linexfer/internal/adapter/xfer"
	"github.com/marmos91/linexfer/pkg/rootfs"
	"github.com/marmos91/linexfer/pkg/shutdown"
)

type server struct {
	dir     string
	adapter *Adapter
	sig     *shutdown.Signal
	errc    chan error
}

func startServer(t *testing.T, opts ...func(*Config)) *server {
	t.Helper()
	dir := t.TempDir()
	root, err := rootfs.Open(afero.NewOsFs(), dir)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Port = 0
	cfg.PollInterval = 20 * time.Millisecond
	for _, opt := range opts {
		opt(&cfg)
	}

	sig := shutdown.New()
	a := New(cfg, handlers.NewHandler(root), sig, nil)
	require.NoError(t, a.Listen())

	s := &server{dir: root.Path(), adapter: a, sig: sig, errc: make(chan error, 1)}
	go func() { s.errc <- a.Serve(context.Background()) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = a.Stop(ctx)
	})
	return s
}

type client struct {
	conn net.Conn
	r    *bufio.Reader
}

func dial(t *testing.T, s *server) *client {
	t.Helper()
	conn, err := net.Dial("tcp", s.adapter.Addr())
	require.NoError(t, err)
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	t.Cleanup(func() { _ = conn.Close() })
	return &client{conn: conn, r: bufio.NewReader(conn)}
}

func (c *client) send(t *testing.T, data string) {
	t.Helper()
	_, err := io.WriteString(c.conn, data)
	require.NoError(t, err)
}

func (c *client) line(t *testing.T) string {
	t.Helper()
	l, err := c.r.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimSuffix(l, "\n")
}

func (c *client) lines(t *testing.T, n int) []string {
	t.Helper()
	out := make([]string, n)
	for i := range out {
		out[i] = c.line(t)
	}
	return out
}

func TestSessionPutListGetQuit(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	c.send(t, "put a.txt 5\nhello")
	assert.Equal(t, "OK stored 5 bytes in a.txt", c.line(t))

	c.send(t, "list\n")
	assert.Equal(t, []string{"OK 1 entries in .", "f 5 a.txt"}, c.lines(t, 2))

	c.send(t, "get a.txt\n")
	assert.Equal(t, "OK sending a.txt", c.line(t))
	payload := make([]byte, 5)
	_, err := io.ReadFull(c.r, payload)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(payload))

	c.send(t, "quit\n")
	assert.Equal(t, "BYE", c.line(t))

	_, err = c.r.ReadByte()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSessionPipelinedPutsAndCRLF(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	c.send(t, "PUT d/one 3\r\nabcput d/two 2\r\nxy\r\nList d\r\n")
	assert.Equal(t, []string{
		"OK stored 3 bytes in d/one",
		"OK stored 2 bytes in d/two",
		"OK 2 entries in d",
		"f 3 one",
		"f 2 two",
	}, c.lines(t, 5))

	got, err := os.ReadFile(filepath.Join(s.dir, "d", "two"))
	require.NoError(t, err)
	assert.Equal(t, "xy", string(got))
}

func TestSessionErrorsKeepSessionOpen(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	c.send(t, "\nbogus\nget\nget missing\nput x abc\nlist nowhere\nhelp\n")
	got := c.lines(t, 11)
	assert.Equal(t, "ERR unknown cmd", got[0])
	assert.Equal(t, "ERR usage: get <path>", got[1])
	assert.Equal(t, "ERR no such file: missing", got[2])
	assert.Equal(t, "ERR invalid size: abc", got[3])
	assert.Equal(t, "ERR not a directory: nowhere", got[4])
	assert.Equal(t, "OK commands:", got[5])
}

func TestSessionEscapeIsClampedToRoot(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	c.send(t, "put ../../escape.txt 2\nok")
	assert.Equal(t, "OK stored 2 bytes in ../../escape.txt", c.line(t))

	_, err := os.Stat(filepath.Join(s.dir, "escape.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(s.dir), "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestSessionFinalLineWithoutNewline(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	c.send(t, "help")
	require.NoError(t, c.conn.(*net.TCPConn).CloseWrite())

	assert.Equal(t, "OK commands:", c.line(t))
}

func TestSessionLineTooLong(t *testing.T) {
	s := startServer(t, func(c *Config) { c.MaxLineLength = 64 })
	c := dial(t, s)

	// 64 bytes including "\n" is still accepted.
	c.send(t, "list "+strings.Repeat("a", 58)+"\n")
	assert.Equal(t, "ERR not a directory: "+strings.Repeat("a", 58), c.line(t))

	c.send(t, "list "+strings.Repeat("b", 100)+"\n")
	assert.Equal(t, "ERR line too long", c.line(t))

	_, err := c.r.ReadByte()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSessionSurvivesShutdownSignal(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	c.send(t, "list\n")
	assert.Equal(t, "OK 0 entries in .", c.line(t))

	s.sig.Trigger("test")
	select {
	case err := <-s.errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("accept loop did not stop")
	}

	// The running session is still served.
	c.send(t, "put late.txt 4\nlate")
	assert.Equal(t, "OK stored 4 bytes in late.txt", c.line(t))

	// New connections are refused.
	conn, err := net.DialTimeout("tcp", s.adapter.Addr(), 200*time.Millisecond)
	if err == nil {
		_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		_, err = conn.Read(make([]byte, 1))
		_ = conn.Close()
	}
	assert.Error(t, err)
}

func TestSessionsAreConcurrent(t *testing.T) {
	s := startServer(t)
	a := dial(t, s)
	b := dial(t, s)

	// a is mid-upload; b must still be served.
	a.send(t, "put big 10\nhello")
	b.send(t, "help\n")
	assert.Equal(t, "OK commands:", b.line(t))

	a.send(t, "world")
	assert.Equal(t, "OK stored 10 bytes in big", a.line(t))
}

func TestReady(t *testing.T) {
	s := startServer(t)
	require.Eventually(t, func() bool { return s.adapter.Ready() == nil }, time.Second, 10*time.Millisecond)

	s.sig.Trigger("test")
	require.Eventually(t, func() bool { return s.adapter.Ready() != nil }, 2*time.Second, 10*time.Millisecond)
}

func TestConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "127.0.0.1:9090", cfg.Address())
	assert.True(t, cfg.Console)

	var empty Config
	empty.ApplyDefaults()
	assert.Equal(t, 0, empty.Port)
	assert.Equal(t, DefaultRoot, empty.Root)
	assert.NotZero(t, empty.PollInterval)
	assert.NotZero(t, empty.BufferSize)
	assert.Equal(t, DefaultMaxLineLength, empty.MaxLineLength)
}
