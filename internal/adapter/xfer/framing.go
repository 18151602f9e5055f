package xfer

import (
	"errors"
	"io"
)

// ReadFrame moves exactly n bytes from r to w using buf as scratch space.
//
// A failed write does not stop the copy: the rest of the frame is still
// read from r and dropped, so r is positioned at the next command when
// ReadFrame returns without a read error. written counts bytes accepted by w
// before its first failure. readErr is non-nil when r ended or failed before
// n bytes arrived; io.EOF is reported as io.ErrUnexpectedEOF.
func ReadFrame(r io.Reader, w io.Writer, n int64, buf []byte) (written int64, writeErr, readErr error) {
	if len(buf) == 0 {
		buf = make([]byte, 4096)
	}

	for remaining := n; remaining > 0; {
		chunk := buf
		if int64(len(chunk)) > remaining {
			chunk = chunk[:remaining]
		}

		k, err := io.ReadFull(r, chunk)
		remaining -= int64(k)

		if k > 0 && writeErr == nil {
			m, werr := w.Write(chunk[:k])
			written += int64(m)
			if werr == nil && m < k {
				werr = io.ErrShortWrite
			}
			writeErr = werr
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return written, writeErr, err
		}
	}
	return written, writeErr, nil
}

// writerOnly and readerOnly hide io.ReaderFrom and io.WriterTo so that
// io.CopyBuffer moves data through the pooled buffer.
type writerOnly struct {
	io.Writer
}

type readerOnly struct {
	io.Reader
}
