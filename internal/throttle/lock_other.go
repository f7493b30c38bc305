//go:build !unix && !windows

package throttle

import (
	"errors"
	"os"
)

var errUnsupported = errors.New("file locking is not supported on this platform")

func lockFile(f *os.File, block bool) error {
	return errUnsupported
}

func unlockFile(f *os.File) error {
	return errUnsupported
}
