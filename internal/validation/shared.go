package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Error collects per-field validation failures for one request. The message
// lists fields in a stable order so the same bad request always produces the
// same response body.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return strings.Join(msgs, "; ")
}
