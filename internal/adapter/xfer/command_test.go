package xfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		ok   bool
		verb string
		args []string
	}{
		{"", false, "", nil},
		{"   \t ", false, "", nil},
		{"list", true, "list", []string{}},
		{"LIST dir", true, "list", []string{"dir"}},
		{"  Put  a.txt   5 ", true, "put", []string{"a.txt", "5"}},
		{"put a b c", true, "put", []string{"a", "b"}},
		{"frobnicate x", true, "frobnicate", []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, ok := ParseCommand(tt.line)
			assert.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.verb, cmd.Verb)
			assert.Equal(t, tt.args, cmd.Args)
		})
	}
}

func TestCommandArgAndLabel(t *testing.T) {
	cmd, _ := ParseCommand("GeT file")
	assert.Equal(t, "file", cmd.Arg(0))
	assert.Equal(t, "", cmd.Arg(1))
	assert.Equal(t, VerbGet, cmd.Label())

	cmd, _ = ParseCommand("delete file")
	assert.Equal(t, VerbUnknown, cmd.Label())
}
