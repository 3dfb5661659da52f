package evaluator

import (
	"fmt"
	"strings"
)

// AssignValue writes value at the dotted location path (spec.md SS3
// <assign location="a.b.c">), creating intermediate map[string]any levels
// as needed. An existing non-map value encountered along the path is an
// error, surfaced by the caller as an error.execution event rather than
// silently overwritten.
func (d *Datamodel) AssignValue(location string, value any) error {
	segments := strings.Split(location, ".")
	if len(segments) == 0 || segments[0] == "" {
		return fmt.Errorf("evaluator: empty assign location")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(segments) == 1 {
		d.data[segments[0]] = value
		return nil
	}

	v, exists := d.data[segments[0]]
	cur, ok := v.(map[string]any)
	if !ok {
		if exists && v != nil {
			return fmt.Errorf("evaluator: assign %q: %q is not a map", location, segments[0])
		}
		cur = make(map[string]any)
		d.data[segments[0]] = cur
	}
	for i := 1; i < len(segments)-1; i++ {
		v, exists := cur[segments[i]]
		next, ok := v.(map[string]any)
		if !ok {
			if exists && v != nil {
				return fmt.Errorf("evaluator: assign %q: %q is not a map", location, segments[i])
			}
			next = make(map[string]any)
			cur[segments[i]] = next
		}
		cur = next
	}
	cur[segments[len(segments)-1]] = value
	return nil
}
