package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"

	"github.com/fenilsonani/declutter/internal/classify"
	"github.com/fenilsonani/declutter/internal/scanner"
	"github.com/fenilsonani/declutter/internal/ui/styles"
)

const maxSamples = 5

// PlanRow is one destination folder and what would go into it
type PlanRow struct {
	Folder string
	Count  int
	Size   int64
}

// Plan summarizes a scan for confirmation
type Plan struct {
	Root      string
	Rows      []PlanRow
	Archives  int
	OtherLeft int
	Folders   int
	Samples   []string
}

// NewPlan builds a plan from a scan, listing categories in table order
func NewPlan(result *scanner.ScanResult, table *classify.Table, relocateOther bool) Plan {
	p := Plan{Root: result.Root, Folders: len(result.Folders)}

	for _, cat := range table.Categories() {
		files := result.Files[cat.Name]
		if len(files) == 0 {
			continue
		}
		row := PlanRow{Folder: cat.Folder, Count: len(files)}
		for _, f := range files {
			row.Size += f.Size
			p.addSample(result.Root, f.Path)
		}
		if cat.Kind == classify.KindArchive {
			p.Archives += len(files)
		}
		p.Rows = append(p.Rows, row)
	}

	if len(result.Other) > 0 {
		if !relocateOther {
			p.OtherLeft = len(result.Other)
			return p
		}
		row := PlanRow{Folder: classify.OtherFolder, Count: len(result.Other)}
		for _, f := range result.Other {
			row.Size += f.Size
			p.addSample(result.Root, f.Path)
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}

func (p *Plan) addSample(root, path string) {
	if len(p.Samples) >= maxSamples {
		return
	}
	if rel, err := filepath.Rel(root, path); err == nil {
		path = rel
	}
	p.Samples = append(p.Samples, path)
}

// TotalFiles counts every file the plan would move
func (p Plan) TotalFiles() int {
	n := 0
	for _, r := range p.Rows {
		n += r.Count
	}
	return n
}

// ConfirmModel asks whether to go ahead with a plan
type ConfirmModel struct {
	plan      Plan
	cursor    int // 0 = Yes, 1 = Cancel
	confirmed bool
	done      bool
	width     int
	keys      KeyMap
	help      help.Model
}

// NewConfirmModel creates the confirmation screen. An empty plan starts on
// Cancel.
func NewConfirmModel(plan Plan) *ConfirmModel {
	cursor := 0
	if plan.TotalFiles() == 0 {
		cursor = 1
	}
	return &ConfirmModel{
		plan:   plan,
		cursor: cursor,
		width:  80,
		keys:   DefaultKeyMap(),
		help:   help.New(),
	}
}

// Confirmed reports whether the user chose to go ahead
func (m *ConfirmModel) Confirmed() bool {
	return m.confirmed
}

// Init implements tea.Model
func (m *ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.No):
			return m.decide(false)
		case key.Matches(msg, m.keys.Yes):
			return m.decide(true)
		case key.Matches(msg, m.keys.Left):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Right):
			if m.cursor < 1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			m.cursor = (m.cursor + 1) % 2
		case key.Matches(msg, m.keys.Select):
			return m.decide(m.cursor == 0)
		}
	}
	return m, nil
}

func (m *ConfirmModel) decide(ok bool) (tea.Model, tea.Cmd) {
	m.confirmed = ok
	m.done = true
	return m, tea.Quit
}

// View implements tea.Model
func (m *ConfirmModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Organize " + m.fit(m.plan.Root, 10)))
	b.WriteString("\n")

	if len(m.plan.Rows) == 0 {
		b.WriteString(styles.DimStyle.Render("Nothing to move."))
		b.WriteString("\n")
	}
	for _, r := range m.plan.Rows {
		fmt.Fprintf(&b, "  %-14s %5d files  %s\n",
			styles.CategoryStyle.Render(r.Folder), r.Count,
			styles.FileSizeStyle.Render(humanize.IBytes(uint64(r.Size))))
	}
	if m.plan.Archives > 0 {
		fmt.Fprintf(&b, "\n  %d archives will be unpacked and deleted\n", m.plan.Archives)
	}
	if m.plan.OtherLeft > 0 {
		fmt.Fprintf(&b, "  %d other files stay where they are\n", m.plan.OtherLeft)
	}
	fmt.Fprintf(&b, "  %d folders will be removed if they end up empty\n", m.plan.Folders)

	if len(m.plan.Samples) > 0 {
		b.WriteString("\n")
		for _, s := range m.plan.Samples {
			b.WriteString("  " + styles.FilePathStyle.Render(m.fit(s, 4)) + "\n")
		}
		if more := m.plan.TotalFiles() - len(m.plan.Samples); more > 0 {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  … and %d more", more)) + "\n")
		}
	}

	b.WriteString("\n")
	yes, no := "[ Organize ]", "[ Cancel ]"
	if m.cursor == 0 {
		yes = styles.SuccessStyle.Render(yes)
		no = styles.DimStyle.Render(no)
	} else {
		yes = styles.DimStyle.Render(yes)
		no = styles.ErrorStyle.Render(no)
	}
	b.WriteString("  " + yes + "  " + no + "\n\n")
	b.WriteString(styles.HelpStyle.Render(m.help.View(m.keys)))

	return styles.PanelStyle.Render(b.String())
}

// fit shortens s to the screen width less margin
func (m *ConfirmModel) fit(s string, margin int) string {
	w := m.width - margin - 6 // panel border and padding
	if w < 10 {
		w = 10
	}
	return truncate.StringWithTail(s, uint(w), "…")
}

// Confirm shows the plan on the terminal and waits for an answer
func Confirm(plan Plan) (bool, error) {
	m := NewConfirmModel(plan)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return false, fmt.Errorf("error running confirmation: %w", err)
	}
	return final.(*ConfirmModel).Confirmed(), nil
}
