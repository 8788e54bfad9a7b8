// Package formview renders form trees and registration events for the
// terminal.
package formview

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/formtree/internal/formtree"
	"github.com/zjrosen/formtree/internal/registry"
)

// Describer lets a control choose how it is shown in a rendered tree.
type Describer interface {
	Describe() string
}

// View renders with styles resolved against one output. Colors and
// attributes are dropped automatically when the output is not a terminal.
type View struct {
	group   lipgloss.Style
	control lipgloss.Style
	detail  lipgloss.Style
	guide   lipgloss.Style
	kind    lipgloss.Style
}

// New returns a View whose styles target w.
func New(w io.Writer) *View {
	r := lipgloss.NewRenderer(w)
	return &View{
		group:   r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#F9FAFB"}),
		control: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#374151", Dark: "#E5E7EB"}),
		detail:  r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}),
		guide:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#4B5563"}),
		kind:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#047857", Dark: "#10B981"}),
	}
}

// Tree renders every child of g with box-drawing guides, one node per line.
func (v *View) Tree(g *formtree.Group) string {
	var sb strings.Builder
	v.renderChildren(&sb, g, "", map[*formtree.Group]bool{g: true})
	return sb.String()
}

func (v *View) renderChildren(sb *strings.Builder, g *formtree.Group, prefix string, seen map[*formtree.Group]bool) {
	names := g.Names()
	for i, name := range names {
		node, _ := g.Get(name)
		isLast := i == len(names)-1

		connector, continuation := "├─ ", "│  "
		if isLast {
			connector, continuation = "└─ ", "   "
		}
		sb.WriteString(v.guide.Render(prefix + connector))

		switch node.Kind() {
		case formtree.KindGroup:
			child, _ := node.Group()
			sb.WriteString(v.group.Render(name))
			if seen[child] {
				sb.WriteString(" " + v.detail.Render("(cycle)") + "\n")
				continue
			}
			sb.WriteString("\n")
			seen[child] = true
			v.renderChildren(sb, child, prefix+continuation, seen)
			delete(seen, child)
		case formtree.KindControl:
			c, _ := node.Control()
			sb.WriteString(v.control.Render(name))
			if desc := Describe(c); desc != "" {
				sb.WriteString("  " + v.detail.Render(desc))
			}
			sb.WriteString("\n")
		default:
			sb.WriteString(v.detail.Render(name+" (invalid)") + "\n")
		}
	}
}

// Event renders one registration event as a single line.
func (v *View) Event(ev registry.Event) string {
	line := fmt.Sprintf("%s %s", v.kind.Render(fmt.Sprintf("%-18s", ev.Kind)), ev.Path)
	if !ev.Node.IsZero() {
		line += " " + v.detail.Render("("+ev.Node.Kind().String()+")")
	}
	return line
}

// Describe returns a short description of a control: its Describe or String
// method when present, otherwise its dynamic type.
func Describe(c formtree.Control) string {
	switch v := c.(type) {
	case nil:
		return ""
	case Describer:
		return v.Describe()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%T", c)
	}
}
