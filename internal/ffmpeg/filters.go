package ffmpeg

import (
	"fmt"
	"strings"

	"github.com/five82/monoclip/internal/job"
)

// LumaLevels is the number of gray levels the target display can show.
const LumaLevels = 16

// GrayPixelFormat is the 8-bit single-channel pixel format.
const GrayPixelFormat = "gray"

// ScaleAlgorithm maps a scaling filter to the swscale flag name.
// FilterNone selects bicubic, which is swscale's own default.
func ScaleAlgorithm(f job.ScalingFilter) string {
	switch f {
	case job.FilterLanczos:
		return "lanczos"
	case job.FilterSpline36:
		return "spline"
	default:
		return "bicubic"
	}
}

// VideoFilterChain builds video filter chains.
type VideoFilterChain struct {
	filters []string
}

// NewVideoFilterChain creates a new empty filter chain.
func NewVideoFilterChain() *VideoFilterChain {
	return &VideoFilterChain{}
}

// AddScale scales to width x height with the given swscale algorithm.
func (c *VideoFilterChain) AddScale(width, height int, algorithm string) *VideoFilterChain {
	f := fmt.Sprintf("scale=%d:%d", width, height)
	if algorithm != "" {
		f += ":flags=" + algorithm
	}
	return c.AddFilter(f)
}

// AddFPS resamples to a constant frame rate.
func (c *VideoFilterChain) AddFPS(fps int) *VideoFilterChain {
	if fps <= 0 {
		return c
	}
	return c.AddFilter(fmt.Sprintf("fps=%d", fps))
}

// AddFormat converts to the given pixel format.
func (c *VideoFilterChain) AddFormat(pixFmt string) *VideoFilterChain {
	if pixFmt == "" {
		return c
	}
	return c.AddFilter("format=" + pixFmt)
}

// AddLumaQuantize maps each 0-255 luma value down to one of levels steps
// (value = floor(value/step)*step). levels must divide 256.
func (c *VideoFilterChain) AddLumaQuantize(levels int) *VideoFilterChain {
	if levels <= 0 || levels >= 256 || 256%levels != 0 {
		return c
	}
	step := 256 / levels
	return c.AddFilter(fmt.Sprintf("lut=y=floor(val/%d)*%d", step, step))
}

// AddFilter adds a custom filter to the chain.
func (c *VideoFilterChain) AddFilter(filter string) *VideoFilterChain {
	if filter != "" {
		c.filters = append(c.filters, filter)
	}
	return c
}

// Build builds the filter chain into a single filter string.
// Returns empty string if no filters are present.
func (c *VideoFilterChain) Build() string {
	if len(c.filters) == 0 {
		return ""
	}
	return strings.Join(c.filters, ",")
}

// IsEmpty returns true if no filters are present.
func (c *VideoFilterChain) IsEmpty() bool {
	return len(c.filters) == 0
}
