package client

import (
	"errors"
	"io"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/robmorgan/halosync/protocol"
)

// pollWait is how long the deadline reader waits for data before giving up.
const pollWait = time.Millisecond

// newNonblockingReader wraps conn so that Read returns protocol.ErrWouldBlock instead of waiting.
func newNonblockingReader(conn net.Conn) io.Reader {
	if sc, ok := conn.(syscall.Conn); ok {
		if raw, err := sc.SyscallConn(); err == nil {
			if r := newRawReader(raw); r != nil {
				return r
			}
		}
	}
	return &deadlineReader{conn: conn, wait: pollWait}
}

// deadlineReader emulates a non-blocking read with a very short read deadline.
// It serves connections without a file descriptor, such as net.Pipe.
type deadlineReader struct {
	conn net.Conn
	wait time.Duration
}

func (r *deadlineReader) Read(p []byte) (int, error) {
	if err := r.conn.SetReadDeadline(time.Now().Add(r.wait)); err != nil {
		return 0, err
	}
	n, err := r.conn.Read(p)
	if n > 0 {
		return n, nil
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return 0, protocol.ErrWouldBlock
	}
	return 0, err
}
