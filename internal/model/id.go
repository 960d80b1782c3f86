package model

import (
	"fmt"
	"strconv"
	"strings"
)

// FlexInt decodes from a JSON number, a numeric string or null.
// Mobile clients send numeric fields both ways.
type FlexInt int64

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	*n = FlexInt(v)
	return nil
}

func (n FlexInt) Int64() int64 {
	return int64(n)
}

// ID is an identifier as it arrives in a request body.
type ID = FlexInt

// ParseID parses a path parameter into a positive id.
func ParseID(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v <= 0 {
		return 0, ErrInvalidID
	}
	return v, nil
}
