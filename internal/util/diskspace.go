package util

// CheckDiskSpace reports whether path has at least minBytes available.
// When the free space cannot be determined it returns true. logf may be nil.
func CheckDiskSpace(path string, minBytes uint64, logf func(format string, args ...any)) bool {
	available := GetAvailableSpace(path)
	if available == 0 {
		if logf != nil {
			logf("Could not determine free space on %s", path)
		}
		return true
	}
	if logf != nil {
		logf("Free space on %s: %s", path, FormatBytes(available))
	}
	return available >= minBytes
}
