package xfer

import (
	"bufio"
	"fmt"
)

// ReplyLineTooLong is sent before a session whose request line exceeds the
// server limit is closed.
const ReplyLineTooLong = "ERR line too long"

// Reply lines. Paths echo the argument the client sent.
const (
	replyUnknown = "ERR unknown cmd"
	replyBye     = "BYE"

	replyUsageGet = "ERR usage: get <path>"
	replyUsagePut = "ERR usage: put <path> <size>"
)

func replyListHeader(n int, path string) string {
	return fmt.Sprintf("OK %d entries in %s", n, path)
}

func replyNotDirectory(path string) string {
	return "ERR not a directory: " + path
}

func replyCannotReadDir(path string) string {
	return "ERR cannot read directory: " + path
}

func replyNoSuchFile(path string) string {
	return "ERR no such file: " + path
}

func replyCannotOpen(path string) string {
	return "ERR cannot open file: " + path
}

func replySending(path string) string {
	return "OK sending " + path
}

func replyInvalidSize(size string) string {
	return "ERR invalid size: " + size
}

func replyCannotWrite(path string) string {
	return "ERR cannot write file: " + path
}

func replyStored(n int64, path string) string {
	return fmt.Sprintf("OK stored %d bytes in %s", n, path)
}

// helpLines is the fixed usage block sent for "help".
var helpLines = []string{
	"OK commands:",
	"  list [path]         list a directory (default .)",
	"  get <path>          download a file; size comes from list",
	"  put <path> <size>   upload exactly <size> bytes sent after this line",
	"  help                show this text",
	"  quit                close the session",
}

// writeLine buffers s followed by "\n". bufio errors are sticky and surface
// on Flush.
func writeLine(w *bufio.Writer, s string) {
	_, _ = w.WriteString(s)
	_ = w.WriteByte('\n')
}
