// Package options provides shared checks for mutually exclusive inputs.
package options

import (
	"errors"
	"strings"
)

// Source is one of a set of mutually exclusive inputs.
type Source struct {
	Name string
	Set  bool
}

// ExactlyOne returns an error unless exactly one of sources is set. The
// message lists every source name, e.g. "one of file, url, or content must
// be provided".
func ExactlyOne(sources ...Source) error {
	names := make([]string, len(sources))
	set := 0
	for i, s := range sources {
		names[i] = s.Name
		if s.Set {
			set++
		}
	}
	switch {
	case set == 0:
		return errors.New("one of " + orList(names) + " must be provided")
	case set > 1:
		return errors.New("only one of " + orList(names) + " may be provided")
	}
	return nil
}

// orList joins names as "a or b" or "a, b, or c".
func orList(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
}
