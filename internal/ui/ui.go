package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chriserin/strparse/internal/db"
	"github.com/chriserin/strparse/internal/parser"
)

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	elementStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// Tree writes one line per node, indented by depth.
func Tree(w io.Writer, root *parser.Node) {
	var walk func(n *parser.Node, level int)
	walk = func(n *parser.Node, level int) {
		fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", level), faintStyle.Render(fmt.Sprintf("%d", n.ID())), describe(n))
		for _, c := range n.Children() {
			walk(c, level+1)
		}
	}
	walk(root, 0)
}

func describe(n *parser.Node) string {
	switch {
	case n.IsRoot():
		return faintStyle.Render(n.Describe())
	case n.IsText():
		return n.Describe()
	default:
		return elementStyle.Render(n.Describe())
	}
}

// StatsLine summarizes the repairs made by a lenient parse.
func StatsLine(w io.Writer, s parser.Stats) {
	if s == (parser.Stats{}) {
		fmt.Fprintln(w, okStyle.Render("clean"))
		return
	}
	fmt.Fprintf(w, "%s  recoveries=%d downgrades=%d forced_closes=%d\n",
		errStyle.Render("repaired"), s.Recoveries, s.Downgrades, s.ForcedCloses)
}

// RunLine writes one recorded run.
func RunLine(w io.Writer, r db.Run) {
	status := okStyle.Render("ok ")
	if r.Failed() {
		status = errStyle.Render("err")
	}
	fmt.Fprintf(w, "%s  %s  %s  nodes=%d recoveries=%d downgrades=%d",
		status, faintStyle.Render(r.CreatedAt.Local().Format("2006-01-02 15:04:05")), r.FilePath,
		r.NodeCount, r.Recoveries, r.Downgrades)
	if r.Failed() {
		fmt.Fprintf(w, "  %s", r.Error)
	}
	fmt.Fprintln(w)
}

func SummaryLine(w io.Writer, s db.Summary) {
	fmt.Fprintf(w, "%d runs over %d files\n", s.Runs, s.Files)
	fmt.Fprintf(w, "  failed: %d\n", s.Failed)
	fmt.Fprintf(w, "  recoveries: %d\n", s.Recoveries)
	fmt.Fprintf(w, "  downgrades: %d\n", s.Downgrades)
	fmt.Fprintf(w, "  forced closes: %d\n", s.ForcedCloses)
}
