package ffmpeg

import "strings"

// Command is a fully resolved ffmpeg encode invocation.
type Command struct {
	Input       string
	FilterGraph string
	VideoArgs   []string
	AudioArgs   []string
	Output      string
}

// Args returns the argument vector, without the binary name.
// Existing outputs are overwritten and stdin is never read.
func (c Command) Args() []string {
	args := make([]string, 0, 16+len(c.VideoArgs)+len(c.AudioArgs))
	args = append(args, "-hide_banner", "-nostdin", "-y", "-i", c.Input)
	if c.FilterGraph != "" {
		args = append(args, "-vf", c.FilterGraph)
	}
	args = append(args, c.VideoArgs...)
	args = append(args, c.AudioArgs...)
	args = append(args, c.Output)
	return args
}

// CommandLine renders binary plus args as a single POSIX shell command line.
func CommandLine(binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, shellQuote(binary))
	for _, a := range args {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ")
}

// shellQuote single-quotes s when it contains anything outside a safe set.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !isShellSafe(r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isShellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("-_./:=,+@%", r)
}
