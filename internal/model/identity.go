package model

import "fmt"

// Identity names an accessible object on the bus: a bus name plus an object path.
type Identity struct {
	Destination string `yaml:"dest" json:"dest" toml:"dest"`
	Path        string `yaml:"path" json:"path" toml:"path"`
}

// IsZero reports whether the identity is unset.
func (id Identity) IsZero() bool {
	return id.Destination == "" && id.Path == ""
}

func (id Identity) String() string {
	return fmt.Sprintf("%s:%s", id.Destination, id.Path)
}
