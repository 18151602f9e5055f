// Package xfer implements the line protocol commands: list, get, put, help
// and quit. The session loop that drives them lives in pkg/adapter/xfer.
package xfer

import (
	"strings"
)

// Protocol verbs.
const (
	VerbList = "list"
	VerbGet  = "get"
	VerbPut  = "put"
	VerbHelp = "help"
	VerbQuit = "quit"

	// VerbUnknown labels anything else in logs, spans and metrics.
	VerbUnknown = "unknown"
)

// Command is one parsed request line.
type Command struct {
	// Verb is lower case; matching is case-insensitive on the wire.
	Verb string

	// Args holds at most two whitespace-separated arguments. Extra fields
	// on the line are ignored.
	Args []string
}

// ParseCommand splits line into a verb and up to two arguments. ok is false
// for blank lines, which the session skips without replying.
func ParseCommand(line string) (cmd Command, ok bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, false
	}
	args := fields[1:]
	if len(args) > 2 {
		args = args[:2]
	}
	return Command{Verb: strings.ToLower(fields[0]), Args: args}, true
}

// Arg returns argument i, or "" when absent.
func (c Command) Arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}

// Label returns the verb, or VerbUnknown for anything outside the protocol.
func (c Command) Label() string {
	switch c.Verb {
	case VerbList, VerbGet, VerbPut, VerbHelp, VerbQuit:
		return c.Verb
	default:
		return VerbUnknown
	}
}
