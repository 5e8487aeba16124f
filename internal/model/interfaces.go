package model

import "strings"

// Interface names advertised by accessible objects (without the
// "org.a11y.atspi." prefix).
const (
	InterfaceAccessible = "Accessible"
	InterfaceAction     = "Action"
	InterfaceComponent  = "Component"
	InterfaceText       = "Text"
	InterfaceValue      = "Value"
)

const interfacePrefix = "org.a11y.atspi."

// InterfaceSet is the set of interfaces an accessible object supports.
type InterfaceSet map[string]bool

// NewInterfaceSet builds a set from interface names. Fully qualified names
// ("org.a11y.atspi.Component") are normalized to their short form.
func NewInterfaceSet(names ...string) InterfaceSet {
	s := make(InterfaceSet, len(names))
	for _, n := range names {
		s[strings.TrimPrefix(n, interfacePrefix)] = true
	}
	return s
}

// Has reports whether the set contains name (short or fully qualified).
func (s InterfaceSet) Has(name string) bool {
	return s[strings.TrimPrefix(name, interfacePrefix)]
}

// HasGeometry reports whether extents can be queried for the object.
func (s InterfaceSet) HasGeometry() bool {
	return s.Has(InterfaceComponent)
}
