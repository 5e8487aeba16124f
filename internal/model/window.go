package model

// Root is one inspectable top-level object: a window (or other top-level
// child) of a running application.
type Root struct {
	App  string   `yaml:"app"  json:"app"`
	Name string   `yaml:"name" json:"name"`
	ID   Identity `yaml:"id"   json:"id"`
}
