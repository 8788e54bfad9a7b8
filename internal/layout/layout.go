// Package layout loads declarative form layouts from YAML and applies them
// to a registry. Forms become root groups; elements attach below any path
// and may be listed before the group they attach to.
package layout

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/formtree/internal/formtree"
)

// Layout is the root structure of a layout file.
type Layout struct {
	Forms    []FieldDef   `yaml:"forms"`
	Elements []ElementDef `yaml:"elements"`
}

// FieldDef declares a control, or a group when Group is set or Fields is
// non-empty.
type FieldDef struct {
	Name     string     `yaml:"name"`
	Type     string     `yaml:"type"`     // e.g. "text", "email", "number"
	Default  string     `yaml:"default"`  // Initial value handed to the control
	Required bool       `yaml:"required"` // Informational; the registry never validates values
	Group    bool       `yaml:"group"`    // Declare an empty group
	Fields   []FieldDef `yaml:"fields"`   // Children of a group
}

// IsGroup reports whether the definition builds a group.
func (f FieldDef) IsGroup() bool {
	return f.Group || len(f.Fields) > 0
}

// ElementDef attaches a field below Parent once Parent exists.
type ElementDef struct {
	Parent   string `yaml:"parent"`
	FieldDef `yaml:",inline"`
}

// Field is the control stored in the tree for a non-group FieldDef.
type Field struct {
	Name     string
	Type     string
	Default  string
	Required bool
}

// Describe summarizes the field for tree rendering.
func (f *Field) Describe() string {
	desc := f.Type
	if desc == "" {
		desc = "text"
	}
	if f.Required {
		desc += ", required"
	}
	if f.Default != "" {
		desc += fmt.Sprintf(", default %q", f.Default)
	}
	return desc
}

// Load reads and parses the layout file at path.
func Load(path string) (*Layout, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: layout path is user supplied
	if err != nil {
		return nil, fmt.Errorf("read layout %s: %w", path, err)
	}
	l, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", path, err)
	}
	return l, nil
}

// Parse decodes and validates a layout document.
func Parse(content []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(content, &l); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks names and paths. Duplicate names within one group are
// rejected because the registry would silently keep only the first.
func (l *Layout) Validate() error {
	if len(l.Forms) == 0 && len(l.Elements) == 0 {
		return fmt.Errorf("layout declares no forms or elements")
	}
	seen := make(map[string]bool, len(l.Forms))
	for i, form := range l.Forms {
		where := fmt.Sprintf("forms[%d]", i)
		if err := validateField(where, form); err != nil {
			return err
		}
		if seen[form.Name] {
			return fmt.Errorf("%s: duplicate form %q", where, form.Name)
		}
		seen[form.Name] = true
	}
	for i, el := range l.Elements {
		where := fmt.Sprintf("elements[%d]", i)
		if _, err := formtree.ParsePath(el.Parent); err != nil {
			return fmt.Errorf("%s: parent: %w", where, err)
		}
		if err := validateField(where, el.FieldDef); err != nil {
			return err
		}
	}
	return nil
}

func validateField(where string, f FieldDef) error {
	if err := formtree.ValidateName(f.Name); err != nil {
		return fmt.Errorf("%s: %w", where, err)
	}
	names := make(map[string]bool, len(f.Fields))
	for i, child := range f.Fields {
		childWhere := fmt.Sprintf("%s.fields[%d]", where, i)
		if err := validateField(childWhere, child); err != nil {
			return err
		}
		if names[child.Name] {
			return fmt.Errorf("%s: duplicate field %q in %q", childWhere, child.Name, f.Name)
		}
		names[child.Name] = true
	}
	return nil
}

// Node builds the tree node for f. Groups are built recursively.
func (f FieldDef) Node() formtree.Node {
	if f.IsGroup() {
		return formtree.GroupNode(f.buildGroup())
	}
	return formtree.ControlNode(&Field{
		Name:     f.Name,
		Type:     f.Type,
		Default:  f.Default,
		Required: f.Required,
	})
}

func (f FieldDef) buildGroup() *formtree.Group {
	g := formtree.NewGroup()
	for _, child := range f.Fields {
		g.Add(child.Name, child.Node())
	}
	return g
}
