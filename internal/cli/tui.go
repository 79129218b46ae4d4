package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stammbaum/pkg/family"
	"github.com/matzehuels/stammbaum/pkg/region"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listMemberStyle   = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// RegionEditModel - Interactive region membership editor
// =============================================================================

// RegionEditModel is the bubbletea model for editing one region's
// membership. Enter toggles the member under the cursor through the region
// engine, so linked families move as a group and locked regions refuse
// foreign members; the refusal is shown in the footer instead of mutating.
type RegionEditModel struct {
	Model    *region.Model
	Source   region.Source
	Members  []*family.Member
	RegionID string

	Cursor int
	Height int
	Offset int

	// Dirty is true once at least one toggle succeeded.
	Dirty bool

	// status is the footer line from the last action.
	status string
}

// NewRegionEditModel creates an editor over the tree's member list.
func NewRegionEditModel(model *region.Model, tree *family.Tree, regionID string) RegionEditModel {
	return RegionEditModel{
		Model:    model,
		Source:   region.NewIndex(tree.Members),
		Members:  tree.Members,
		RegionID: regionID,
		Height:   15,
	}
}

func (m RegionEditModel) Init() tea.Cmd {
	return nil
}

func (m RegionEditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Members)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			m.toggle()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// toggle flips the member under the cursor and records the outcome.
func (m *RegionEditModel) toggle() {
	if len(m.Members) == 0 {
		return
	}
	member := m.Members[m.Cursor]
	members, err := m.Model.Toggle(m.RegionID, member.ID)
	if err != nil {
		m.status = describeToggleError(err)
		return
	}
	m.Dirty = true
	m.status = fmt.Sprintf("%d members in region", len(members))
	if member.Linked {
		if group, err := region.ExpandMembership(m.Source, member.ID); err == nil && len(group) > 1 {
			m.status = fmt.Sprintf("linked family of %d toggled together · %d members in region",
				len(group), len(members))
		}
	}
}

func (m RegionEditModel) View() string {
	var b strings.Builder

	rec, err := m.Model.Region(m.RegionID)
	if err != nil {
		return "region vanished\n"
	}
	inRegion := make(map[string]bool, len(rec.MemberIDs))
	for _, id := range rec.MemberIDs {
		inRegion[id] = true
	}

	title := "Edit region " + rec.Name
	if locked, _ := m.Model.IsLinkedFamilyRegion(rec.ID); locked {
		title += "  " + styleLocked.Render(iconLocked+" linked family")
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ toggle  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Members) {
		end = len(m.Members)
	}
	for i := m.Offset; i < end; i++ {
		member := m.Members[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		markStyle := listDimStyle
		if inRegion[member.ID] {
			mark = "[x]"
			markStyle = listMemberStyle
		}

		label := member.DisplayName()
		if member.Linked {
			label += " " + listDimStyle.Render("(linked)")
		}
		style := listNormalStyle
		if i == m.Cursor {
			style = listSelectedStyle
		}

		b.WriteString(cursor + markStyle.Render(mark) + " " + style.Render(label) + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + listDimStyle.Render(m.status) + "\n")
	}
	return b.String()
}
