package harness

// findViewer probes the configured viewer commands in order and returns the
// first one present on PATH. The second return is false when none resolves,
// which the caller treats as "skip the report, no error".
func findViewer(lookPath func(string) (string, error), viewers []string) (string, bool) {
	for _, v := range viewers {
		if path, err := lookPath(v); err == nil {
			return path, true
		}
	}
	return "", false
}
