package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/marmos91/linexfer/pkg/shutdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuitTriggersShutdown(t *testing.T) {
	sig := shutdown.New()
	var out bytes.Buffer

	err := New(strings.NewReader("  quit  \nstatus\n"), &out, sig).Run()
	require.NoError(t, err)

	assert.True(t, sig.Triggered())
	assert.Equal(t, "console", sig.Reason())
	assert.Equal(t, "Shutting down server...\n", out.String())
}

func TestUnknownCommands(t *testing.T) {
	sig := shutdown.New()
	var out bytes.Buffer

	err := New(strings.NewReader("status\n\n  \nQUIT\n"), &out, sig).Run()
	require.NoError(t, err)

	assert.False(t, sig.Triggered())
	assert.Equal(t, "Unknown command: status\nUnknown command: QUIT\n", out.String())
}

func TestEOFWithoutQuit(t *testing.T) {
	sig := shutdown.New()
	require.NoError(t, New(strings.NewReader(""), &bytes.Buffer{}, sig).Run())
	assert.False(t, sig.Triggered())
}

func TestReadError(t *testing.T) {
	sig := shutdown.New()
	boom := errors.New("tty gone")

	err := New(iotest.ErrReader(boom), &bytes.Buffer{}, sig).Run()
	assert.ErrorIs(t, err, boom)
	assert.False(t, sig.Triggered())
}
