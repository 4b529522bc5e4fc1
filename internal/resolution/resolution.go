// Package resolution derives downscaled target resolutions for the
// 240-pixel-wide grayscale display from a probed source size.
package resolution

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Candidate width sweep: MaxWidth down to (but excluding) MinWidthExclusive.
const (
	MaxWidth          = 240
	MinWidthExclusive = 120
	WidthStep         = 16
)

// MaxDimension bounds a usable source width or height.
const MaxDimension = 65535

// DefaultCandidates is the 4:3 list offered when probing fails.
var DefaultCandidates = []string{
	"240x180", "224x168", "208x156", "192x144",
	"176x132", "160x120", "144x108", "128x96",
}

// Resolution is a width/height pair in pixels.
type Resolution struct {
	Width  int
	Height int
}

// String renders the resolution as "WxH".
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Parse parses a canonical "WxH" string: two positive decimal integers with
// no sign, leading zeros or spaces, so that Parse(s).String() == s.
func Parse(s string) (Resolution, error) {
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return Resolution{}, fmt.Errorf("resolution %q is not in WxH form", s)
	}
	width, err := parseDimension(w)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolution %q: bad width: %w", s, err)
	}
	height, err := parseDimension(h)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolution %q: bad height: %w", s, err)
	}
	return Resolution{Width: width, Height: height}, nil
}

func parseDimension(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%q is not a plain decimal number", s)
		}
	}
	if s[0] == '0' {
		return 0, fmt.Errorf("%q must be positive without leading zeros", s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n > MaxDimension {
		return 0, fmt.Errorf("%d exceeds %d", n, MaxDimension)
	}
	return n, nil
}

// Candidates returns the target resolutions for a source of the given size,
// largest first. Heights are w*height/width truncated toward zero; only
// pairs with both dimensions even are kept.
//
// The second return value is true when the result is DefaultCandidates
// because the source size was unusable or produced no even pair. Sizes
// above MaxDimension are unusable.
func Candidates(width, height int) ([]string, bool) {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return Fallback(), true
	}

	var out []string
	for w := MaxWidth; w > MinWidthExclusive; w -= WidthStep {
		h := w * height / width
		if h <= 0 || w%2 != 0 || h%2 != 0 {
			continue
		}
		out = append(out, Resolution{Width: w, Height: h}.String())
	}

	if len(out) == 0 {
		return Fallback(), true
	}
	return out, false
}

// Fallback returns a copy of DefaultCandidates.
func Fallback() []string {
	out := make([]string, len(DefaultCandidates))
	copy(out, DefaultCandidates)
	return out
}

// Contains reports whether res appears in list.
func Contains(list []string, res string) bool {
	for _, r := range list {
		if r == res {
			return true
		}
	}
	return false
}
