//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package source

func adviseSequential([]byte) error {
	return nil
}
