// Package demo is a small checklist application that exposes its
// accessibility tree and reacts to accessibility actions.
package demo

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/platform"
	"github.com/mj1618/accessbridge/internal/toolkit/teabridge"
)

const (
	rootID   model.NodeID = 1
	listID   model.NodeID = 2
	statusID model.NodeID = 3

	// Item i has node id firstItemID+i.
	firstItemID model.NodeID = 10
)

const maxNotifications = 5

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Item is one checklist entry.
type Item struct {
	Label string
	Done  bool
}

// Checklist is the demo bubbletea model.
type Checklist struct {
	ctx      context.Context
	title    string
	items    []Item
	cursor   int
	status   string
	recorder *platform.Recorder
}

var (
	_ tea.Model              = Checklist{}
	_ teabridge.TreeProvider = Checklist{}
)

// NewChecklist returns a checklist. Notifications recorded by recorder are
// shown below the list; recorder may be nil.
func NewChecklist(ctx context.Context, title string, labels []string, recorder *platform.Recorder) Checklist {
	items := make([]Item, len(labels))
	for i, l := range labels {
		items[i] = Item{Label: l}
	}
	return Checklist{ctx: ctx, title: title, items: items, recorder: recorder}
}

// Items returns a copy of the entries.
func (c Checklist) Items() []Item { return append([]Item(nil), c.items...) }

// Cursor returns the index of the focused entry.
func (c Checklist) Cursor() int { return c.cursor }

// Init implements tea.Model.
func (c Checklist) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (c Checklist) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return c, tea.Sequence(windowClosed, tea.Quit)
		case "up", "k":
			if c.cursor > 0 {
				c.cursor--
			}
		case "down", "j":
			if c.cursor < len(c.items)-1 {
				c.cursor++
			}
		case " ", "space", "enter":
			c.toggle(c.cursor)
		case "?":
			c.status = "screen reader query"
			return c, accessibilityQuery
		}

	case teabridge.ActionRequestMsg:
		c.status = c.apply(msg.Request)
	}
	return c, nil
}

func windowClosed() tea.Msg       { return teabridge.WindowClosedMsg{} }
func accessibilityQuery() tea.Msg { return teabridge.AccessibilityQueryMsg{} }

func (c *Checklist) toggle(i int) {
	if i < 0 || i >= len(c.items) {
		return
	}
	c.items[i].Done = !c.items[i].Done
	state := "not done"
	if c.items[i].Done {
		state = "done"
	}
	c.status = fmt.Sprintf("%s marked %s", c.items[i].Label, state)
}

func (c *Checklist) apply(req model.ActionRequest) string {
	i := int(req.Target - firstItemID)
	if req.Target < firstItemID || i >= len(c.items) {
		return fmt.Sprintf("ignored %s", req)
	}
	switch req.Action {
	case model.ActionClick:
		c.toggle(i)
		return c.status
	case model.ActionFocus:
		c.cursor = i
		return fmt.Sprintf("focused %s", c.items[i].Label)
	default:
		return fmt.Sprintf("unsupported %s", req)
	}
}

// AccessibilityTree implements teabridge.TreeProvider.
func (c Checklist) AccessibilityTree() model.TreeUpdate {
	nodes := []model.Node{
		{ID: rootID, Role: "window", Name: c.title, Children: []model.NodeID{listID, statusID}},
		{ID: listID, Role: "list", Name: c.title},
		{ID: statusID, Role: "txt", Name: c.status, Live: model.LivePolite},
	}
	for i, item := range c.items {
		id := firstItemID + model.NodeID(i)
		nodes[1].Children = append(nodes[1].Children, id)
		nodes = append(nodes, model.Node{
			ID:       id,
			Role:     "chk",
			Name:     item.Label,
			Selected: item.Done,
			Actions:  []model.Action{model.ActionClick, model.ActionFocus},
		})
	}
	focus := rootID
	if len(c.items) > 0 {
		focus = firstItemID + model.NodeID(c.cursor)
	}
	return model.TreeUpdate{Nodes: nodes, Root: rootID, Focus: focus}
}

// View implements tea.Model.
func (c Checklist) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(c.title))
	b.WriteString("\n\n")
	for i, item := range c.items {
		cursor := "  "
		if i == c.cursor {
			cursor = cursorStyle.Render("> ")
		}
		box := "[ ]"
		label := item.Label
		if item.Done {
			box = "[x]"
			label = doneStyle.Render(label)
		}
		fmt.Fprintf(&b, "%s%s %s\n", cursor, box, label)
	}
	if c.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(c.status))
		b.WriteString("\n")
	}
	if c.recorder != nil {
		events := c.recorder.Events(c.ctx)
		if len(events) > maxNotifications {
			events = events[len(events)-maxNotifications:]
		}
		if len(events) > 0 {
			var lines []string
			for _, n := range events {
				lines = append(lines, noticeStyle.Render(fmt.Sprintf("%s node=%d %s", n.Name, n.Node, n.Text)))
			}
			b.WriteString("\n")
			b.WriteString(panelStyle.Render(strings.Join(lines, "\n")))
			b.WriteString("\n")
		}
	}
	b.WriteString(helpStyle.Render("\n↑/↓ move • space toggle • ? simulate screen reader • q quit"))
	return b.String()
}
