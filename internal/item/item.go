// Package item defines the identifier type shared across subsystems.
package item

import "strconv"

// ID identifies one content item in the platform's monotonically numbered
// space. The space is believed, not guaranteed, to be densely populated below
// the frontier; withdrawn IDs leave permanent gaps.
type ID uint64

// String renders the ID in decimal.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Parse converts a decimal string into an ID.
func Parse(s string) (ID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(n), nil
}
