//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package cli

func isTerminal(uintptr) bool {
	return false
}
