package selection

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/ironsheep/canvas-history-mcp/internal/raster"
)

// Policy decides what is left behind on the canvas when a region's pixels
// are detached.
type Policy int

const (
	PolicyTransparent Policy = iota
	PolicyBackground
	PolicySecondary
)

var policyNames = map[Policy]string{
	PolicyTransparent: "transparent",
	PolicyBackground:  "background",
	PolicySecondary:   "secondary",
}

func (p Policy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy maps a policy name to its Policy. The empty string is
// transparent.
func ParsePolicy(s string) (Policy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PolicyTransparent, nil
	}
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return PolicyTransparent, fmt.Errorf("unknown replacement policy: %s", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Resolve returns the color that replaces detached pixels.
func (p Policy) Resolve(background, secondary color.NRGBA) color.NRGBA {
	switch p {
	case PolicyBackground:
		return background
	case PolicySecondary:
		return secondary
	default:
		return raster.Transparent
	}
}
