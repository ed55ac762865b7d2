// internal/piece/count.go
//
// Count is a piece stock: either infinite or a finite, non-negative number.
// A finite count never goes below zero; Decrease on Finite(0) fails with ErrCountDepleted.
//
// Encoding: an integer for finite counts, the string "inf" for infinite ones.
package piece

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrCountDepleted is returned when taking from an exhausted finite count.
var ErrCountDepleted = errors.New("count depleted")

const infName = "inf"

// Count is comparable; the zero value is Finite(0).
type Count struct {
	infinite bool
	n        uint
}

// Infinite returns a count that never depletes.
func Infinite() Count { return Count{infinite: true} }

// Finite returns a count holding n units.
func Finite(n uint) Count { return Count{n: n} }

// IsInfinite reports whether the count never depletes.
func (c Count) IsInfinite() bool { return c.infinite }

// Value returns the remaining units; ok is false for infinite counts.
func (c Count) Value() (n uint, ok bool) {
	if c.infinite {
		return 0, false
	}
	return c.n, true
}

// Exhausted reports whether a Decrease would fail.
func (c Count) Exhausted() bool { return !c.infinite && c.n == 0 }

// Decrease takes one unit.
func (c *Count) Decrease() error {
	if c.infinite {
		return nil
	}
	if c.n == 0 {
		return ErrCountDepleted
	}
	c.n--
	return nil
}

// Increase gives one unit back. Infinite counts are unchanged.
func (c *Count) Increase() {
	if !c.infinite {
		c.n++
	}
}

func (c Count) String() string {
	if c.infinite {
		return infName
	}
	return strconv.FormatUint(uint64(c.n), 10)
}

// ParseCount accepts "inf"/"infinite" or a non-negative integer.
func ParseCount(s string) (Count, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == infName || s == "infinite" {
		return Infinite(), nil
	}
	n, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return Count{}, fmt.Errorf("invalid count %q: want a non-negative integer or %q", s, infName)
	}
	return Finite(uint(n)), nil
}

func (c Count) MarshalYAML() (any, error) {
	if c.infinite {
		return infName, nil
	}
	return c.n, nil
}

func (c *Count) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: count must be a scalar", n.Line)
	}
	v, err := ParseCount(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*c = v
	return nil
}

func (c Count) MarshalJSON() ([]byte, error) {
	if c.infinite {
		return json.Marshal(infName)
	}
	return json.Marshal(c.n)
}

func (c *Count) UnmarshalJSON(b []byte) error {
	v, err := ParseCount(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
