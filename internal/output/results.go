package output

import (
	"github.com/mj1618/atspi-inspector/internal/model"
	"github.com/mj1618/atspi-inspector/internal/pick"
)

// ListResult is the output of the `list` command.
type ListResult struct {
	Roots []model.Root `yaml:"roots" json:"roots"`
}

// TreeResult is the top-level output of the `tree` command.
type TreeResult struct {
	Root     model.Identity  `yaml:"root"            json:"root"`
	Name     string          `yaml:"name,omitempty"  json:"name,omitempty"`
	TS       int64           `yaml:"ts"              json:"ts"`
	Nodes    int             `yaml:"nodes"           json:"nodes"`
	Partial  bool            `yaml:"partial,omitempty" json:"partial,omitempty"`
	Error    string          `yaml:"error,omitempty" json:"error,omitempty"`
	Elements []model.Element `yaml:"elements"        json:"elements"`
}

// TreeFlatResult is the top-level output when --flat is used.
type TreeFlatResult struct {
	Root     model.Identity      `yaml:"root"            json:"root"`
	Name     string              `yaml:"name,omitempty"  json:"name,omitempty"`
	TS       int64               `yaml:"ts"              json:"ts"`
	Nodes    int                 `yaml:"nodes"           json:"nodes"`
	Partial  bool                `yaml:"partial,omitempty" json:"partial,omitempty"`
	Error    string              `yaml:"error,omitempty" json:"error,omitempty"`
	Elements []model.FlatElement `yaml:"elements"        json:"elements"`
}

// PickResult is the output of the `pick` command.
type PickResult struct {
	Point model.Point `yaml:"point"         json:"point"`
	Scale float64     `yaml:"scale"         json:"scale"`
	Hit   *pick.Hit   `yaml:"hit,omitempty" json:"hit,omitempty"`
}

// RefreshResult reports what changed between two builds of the same root.
type RefreshResult struct {
	Root    model.Identity     `yaml:"root"              json:"root"`
	Nodes   int                `yaml:"nodes"             json:"nodes"`
	Changes []model.TreeChange `yaml:"changes,omitempty" json:"changes,omitempty"`
}
