package loader

// StickyMode is the decoded value of the "sticky" key: false, true or "deep".
type StickyMode string

const (
	StickyNone StickyMode = ""
	StickyOn   StickyMode = "sticky"
	StickyDeep StickyMode = "deep"
)

// Document is the top-level shape of a tree file.
type Document struct {
	Name   string            `json:"name" mapstructure:"name"`
	States []StateMetadata   `json:"states" mapstructure:"states"`
	Meta   map[string]string `json:"metadata" mapstructure:"metadata"`
}

// StateMetadata declares one state. Children nest relative names under it.
type StateMetadata struct {
	Name     string            `json:"name" mapstructure:"name"`
	Parent   string            `json:"parent" mapstructure:"parent"`
	Sticky   StickyMode        `json:"sticky" mapstructure:"sticky"`
	Params   []string          `json:"params" mapstructure:"params"`
	Views    map[string]string `json:"views" mapstructure:"views"`
	Data     map[string]any    `json:"data" mapstructure:"data"`
	Children []StateMetadata   `json:"children" mapstructure:"children"`
}
