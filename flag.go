package rex

import "github.com/magnetde/rex/engine"

// FlagSet is an immutable set of matching options. The zero value is the
// empty set. Enable and Disable return new sets; two sets are equal when
// they hold the same flags, regardless of the order they were toggled in.
type FlagSet struct {
	mask int
}

// Enable returns a set with the flag added.
func (f FlagSet) Enable(flag int) FlagSet {
	return FlagSet{mask: f.mask | flag}
}

// Disable returns a set with the flag removed. Disabling a flag that is not
// in the set is a no-op.
func (f FlagSet) Disable(flag int) FlagSet {
	return FlagSet{mask: f.mask &^ flag}
}

// Has reports whether the flag is in the set.
func (f FlagSet) Has(flag int) bool {
	return f.mask&flag != 0
}

// Mask returns the bitwise OR of all flags in the set, 0 when empty.
// The numeric values are the host engine's flag constants.
func (f FlagSet) Mask() int {
	return f.mask
}

// Equal reports set equality.
func (f FlagSet) Equal(other FlagSet) bool {
	return f.mask == other.mask
}

func (f FlagSet) String() string {
	return engine.FormatFlags(f.mask)
}
