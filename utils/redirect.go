package utils

// LocalRedirectPath returns next when it is a local absolute path and
// fallback otherwise, so return paths cannot point at another host.
func LocalRedirectPath(next, fallback string) string {
	if len(next) == 0 || next[0] != '/' {
		return fallback
	}
	if len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return fallback
	}
	for _, r := range next {
		if r < 0x20 || r == 0x7f {
			return fallback
		}
	}
	return next
}
