//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package source

import (
	"errors"

	"golang.org/x/sys/unix"
)

// adviseSequential tells the kernel the region will be read front to back
// and should be prefetched.
func adviseSequential(b []byte) error {
	return errors.Join(
		unix.Madvise(b, unix.MADV_SEQUENTIAL),
		unix.Madvise(b, unix.MADV_WILLNEED),
	)
}
