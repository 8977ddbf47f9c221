//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package client

import (
	"io"
	"syscall"

	"github.com/robmorgan/halosync/protocol"
)

// rawReader reads straight from the socket descriptor. The runtime keeps network sockets
// in non-blocking mode, so an empty receive buffer shows up as EAGAIN.
type rawReader struct {
	raw syscall.RawConn
}

func newRawReader(raw syscall.RawConn) io.Reader {
	return &rawReader{raw: raw}
}

func (r *rawReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	var (
		n     int
		opErr error
	)
	err := r.raw.Read(func(fd uintptr) bool {
		n, opErr = syscall.Read(int(fd), p)
		// true: never park in the poller, we want the answer now
		return true
	})
	if err != nil {
		return 0, err
	}

	switch {
	case opErr == syscall.EAGAIN || opErr == syscall.EWOULDBLOCK || opErr == syscall.EINTR:
		return 0, protocol.ErrWouldBlock
	case opErr != nil:
		return 0, opErr
	case n == 0:
		return 0, io.EOF
	}
	return n, nil
}
