//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)

package client

import (
	"io"
	"syscall"
)

func newRawReader(syscall.RawConn) io.Reader {
	return nil
}
