package transform

import "strconv"

// Namer records the names accepted for one resource kind during one copy
// run and resolves collisions by suffixing -2, -3, and so on.
// A Namer is not safe for concurrent use.
type Namer struct {
	taken map[string]bool
}

// NewNamer returns an empty Namer.
func NewNamer() *Namer {
	return &Namer{taken: make(map[string]bool)}
}

// Claim records name and returns it, or the first free suffixed variant
// when name is already taken. collided reports whether a suffix was needed.
func (n *Namer) Claim(name string) (final string, collided bool) {
	if !n.taken[name] {
		n.taken[name] = true
		return name, false
	}
	for i := 2; ; i++ {
		candidate := name + "-" + strconv.Itoa(i)
		if !n.taken[candidate] {
			n.taken[candidate] = true
			return candidate, true
		}
	}
}

// Taken reports whether name has been claimed.
func (n *Namer) Taken(name string) bool {
	return n.taken[name]
}
