package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/realty/internal/region"
)

// ParsePoint parses "x,y,z".
func ParsePoint(s string) (region.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return region.Point{}, fmt.Errorf("point %q: want x,y,z", s)
	}
	var xyz [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return region.Point{}, fmt.Errorf("point %q: %w", s, err)
		}
		xyz[i] = n
	}
	return region.Pt(xyz[0], xyz[1], xyz[2]), nil
}

// ParseIdentity parses a UUID. Empty input is the nil identity.
func ParseIdentity(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("identity %q: %w", s, err)
	}
	return id, nil
}
