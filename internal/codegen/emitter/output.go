package emitter

import (
	"fmt"
	"strings"
)

// Output selects which categories of declarations are emitted. Flags are
// independent and can be combined.
type Output uint8

const (
	OutputEnums Output = 1 << iota
	OutputProperties
	OutputFields
	OutputConstants

	OutputAll = OutputEnums | OutputProperties | OutputFields | OutputConstants
)

var outputNames = []struct {
	flag Output
	name string
}{
	{OutputEnums, "enums"},
	{OutputProperties, "properties"},
	{OutputFields, "fields"},
	{OutputConstants, "constants"},
}

// Has reports whether every flag in f is set.
func (o Output) Has(f Output) bool { return o&f == f }

// Any reports whether at least one flag in f is set.
func (o Output) Any(f Output) bool { return o&f != 0 }

func (o Output) String() string {
	var parts []string
	for _, n := range outputNames {
		if o.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// ParseOutput combines output kind names ("enums", "properties", "fields",
// "constants", "all") into a mask.
func ParseOutput(kinds []string) (Output, error) {
	var o Output
	for _, k := range kinds {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "all" {
			o |= OutputAll
			continue
		}
		found := false
		for _, n := range outputNames {
			if n.name == k {
				o |= n.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown output kind %q", k)
		}
	}
	return o, nil
}
