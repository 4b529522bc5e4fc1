//go:build !linux && !darwin && !freebsd

package util

// GetAvailableSpace is not implemented on this platform and always returns 0.
func GetAvailableSpace(string) uint64 {
	return 0
}
