// internal/registers/snapshot.go
package registers

import (
	"encoding/json"
	"math"
	"sort"
)

// Snapshot is the decoded state of one inverter at one poll instant.
type Snapshot map[string]float64

// Assemble merges decoded blocks into one flat snapshot.
// Names are unique across the catalog, so argument order does not matter.
func Assemble(decoded ...map[string]float64) Snapshot {
	n := 0
	for _, d := range decoded {
		n += len(d)
	}

	s := make(Snapshot, n)
	for _, d := range decoded {
		for k, v := range d {
			s[k] = v
		}
	}
	return s
}

// Names returns the quantity names in lexical order.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON encodes the snapshot as a flat object.
// Non-finite values have no JSON form and are written as null.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	m := make(map[string]*float64, len(s))
	for k, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			m[k] = nil
			continue
		}
		v := v
		m[k] = &v
	}
	return json.Marshal(m)
}
