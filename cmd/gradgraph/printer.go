package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/born-ml/gradgraph/internal/autodiff"
	"github.com/born-ml/gradgraph/internal/matrix"
	"github.com/born-ml/gradgraph/internal/symbolic"
)

// Colors.
var (
	colorPhase = lipgloss.Color("#2dd4bf")
	colorMuted = lipgloss.Color("#64748b")
	colorError = lipgloss.Color("#ef4444")
	colorRule  = lipgloss.Color("#a78bfa")
)

type styles struct {
	phase lipgloss.Style
	node  lipgloss.Style
	muted lipgloss.Style
	err   lipgloss.Style
	rule  lipgloss.Style
}

func newStyles() styles {
	return styles{
		phase: lipgloss.NewStyle().Bold(true).Foreground(colorPhase),
		node:  lipgloss.NewStyle().Bold(true),
		muted: lipgloss.NewStyle().Foreground(colorMuted),
		err:   lipgloss.NewStyle().Bold(true).Foreground(colorError),
		rule:  lipgloss.NewStyle().Foreground(colorRule),
	}
}

// printer writes events as text, one block per event.
type printer struct {
	w      io.Writer
	styles styles
	styled bool
}

func newPrinter(w io.Writer, styled bool) *printer {
	return &printer{w: w, styles: newStyles(), styled: styled}
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *printer) event(ev autodiff.Event) {
	switch e := ev.(type) {
	case autodiff.PhaseMarker:
		fmt.Fprintln(p.w, p.render(p.styles.phase, "== "+e.Phase.String()+" =="))
	case autodiff.NodeUpdate:
		p.node(e)
	case autodiff.EdgeAnnotation:
		label := e.Label
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(p.w, "  %s %s\n", p.render(p.styles.muted, fmt.Sprintf("%d -> %d", e.From, e.To)), label)
	case autodiff.RuleGrouping:
		fmt.Fprintln(p.w, p.render(p.styles.rule, fmt.Sprintf("rule %s at %d, members %v", e.Name, e.Index, e.Members)))
	case autodiff.ErrorMessage:
		fmt.Fprintln(p.w, p.render(p.styles.err, fmt.Sprintf("error at %d: %s", e.Index, e.Text)))
	}
}

func (p *printer) node(u autodiff.NodeUpdate) {
	fmt.Fprintf(p.w, "%s %s\n", p.render(p.styles.node, fmt.Sprintf("[%d]", u.Index)), u.DisplayName)
	p.matrix("value", u.Value)
	p.matrix("grad", u.Derivative)
	if s := symbolic.Format(u.Symbolic); s != "" {
		fmt.Fprintf(p.w, "    %s %s\n", p.render(p.styles.muted, "sym:"), s)
	}
}

func (p *printer) matrix(label string, m matrix.Matrix) {
	if m.IsZero() {
		return
	}
	lines := strings.Split(m.String(), "\n")
	fmt.Fprintf(p.w, "    %s %s\n", p.render(p.styles.muted, label+":"), lines[0])
	pad := strings.Repeat(" ", len(label)+2)
	for _, line := range lines[1:] {
		fmt.Fprintf(p.w, "    %s%s\n", pad, line)
	}
}
