package schema

import (
	"strconv"
)

// ParseID parses a positive integer path parameter. The range matches the
// int64 id fields of request bodies, so any id a body accepts can be
// addressed in a path.
func ParseID(name, raw string) (uint, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return 0, fieldError(name, "must be a positive integer")
	}
	return uint(n), nil
}
