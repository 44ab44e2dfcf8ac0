// Package rules implements the interactive rule management menu.
//
// The menu offers view, add, remove and edit on a rule set. Every change is
// written through a Saver before the next prompt, so an interrupted session
// never loses an acknowledged edit.
package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zxg-sec/blfilter/internal/errors"
	"github.com/zxg-sec/blfilter/internal/logging"
	"github.com/zxg-sec/blfilter/internal/rule"
	"github.com/zxg-sec/blfilter/internal/ruleset"
	"github.com/zxg-sec/blfilter/internal/tui/styles"
	"github.com/zxg-sec/blfilter/internal/util"
)

// Saver persists a rule set. *ruleset.Store satisfies it.
type Saver interface {
	Save(set *ruleset.Set) error
}

type mode int

const (
	modeMenu mode = iota
	modeAdd
	modeRemove
	modeEditIndex
	modeEditValue
)

type tone int

const (
	toneInfo tone = iota
	toneSuccess
	toneWarning
	toneError
)

type feedback struct {
	text string
	tone tone
}

// Model is the Bubbletea model for the rule menu.
type Model struct {
	set       *ruleset.Set
	saver     Saver
	logger    *logging.Logger
	mode      mode
	textInput textinput.Model
	editIndex int
	showList  bool
	messages  []feedback
	quitting  bool
	saves     int
}

// New creates a menu over set that persists through saver.
func New(set *ruleset.Set, saver Saver, logger *logging.Logger) Model {
	if logger == nil {
		logger = logging.NopLogger()
	}
	ti := textinput.New()
	ti.CharLimit = 2000
	ti.Width = 60

	return Model{
		set:       set,
		saver:     saver,
		logger:    logger.WithCommand("rules"),
		textInput: ti,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if keyMsg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	if m.mode == modeMenu {
		return m.handleMenuKey(keyMsg)
	}

	switch keyMsg.Type {
	case tea.KeyEsc:
		m.backToMenu()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.textInput.Value())
		m.textInput.SetValue("")
		m.messages = nil
		switch m.mode {
		case modeAdd:
			m.submitAdd(value)
		case modeRemove:
			m.submitRemove(value)
		case modeEditIndex:
			m.submitEditIndex(value)
		case modeEditValue:
			m.submitEditValue(value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.messages = nil
	m.showList = false

	switch msg.String() {
	case "1":
		m.showList = true
	case "2":
		m.enter(modeAdd)
	case "3":
		m.showList = true
		m.enter(modeRemove)
	case "4":
		m.showList = true
		m.enter(modeEditIndex)
	case "0", "q":
		m.say(toneSuccess, "Leaving rule management.")
		m.quitting = true
		return m, tea.Quit
	default:
		m.say(toneError, "Invalid choice, please try again.")
	}
	return m, nil
}

func (m *Model) enter(next mode) {
	m.mode = next
	m.textInput.SetValue("")
	m.textInput.Focus()
}

func (m *Model) backToMenu() {
	m.mode = modeMenu
	m.editIndex = 0
	m.showList = false
	m.textInput.Blur()
}

func (m *Model) say(t tone, format string, args ...any) {
	m.messages = append(m.messages, feedback{text: fmt.Sprintf(format, args...), tone: t})
}

func (m *Model) persist() {
	if err := m.saver.Save(m.set); err != nil {
		m.logger.Error("failed to save rules", "error", err.Error())
		m.say(toneError, "Failed to save rules: %v", err)
		return
	}
	m.saves++
}

func (m *Model) submitAdd(value string) {
	entries := util.SplitEntries(value)
	if len(entries) == 0 || util.IsBack(entries) {
		m.backToMenu()
		return
	}

	res := m.set.Add(entries...)
	if res.Changed() {
		m.persist()
		m.logger.Info("rules added", "count", len(res.Added))
	}

	for _, r := range res.Duplicates {
		m.say(toneWarning, "Rule %s already exists, skipped.", r)
	}
	if len(res.Added) > 0 {
		m.say(toneSuccess, "Added rules:")
		for _, r := range res.Added {
			m.say(toneSuccess, "  %s", r)
		}
	}
	if len(res.Invalid) > 0 {
		m.say(toneError, "Invalid rules, not added:")
		for _, r := range res.Invalid {
			m.say(toneError, "  %s (%s)", r.Rule, errors.Reason(r.Err))
		}
	}
	m.backToMenu()
}

func (m *Model) submitRemove(value string) {
	entries := util.SplitEntries(value)
	if len(entries) == 0 || util.IsBack(entries) {
		m.backToMenu()
		return
	}

	indices, bad := util.ParseIndices(entries)
	res := m.set.Remove(indices...)
	if res.Changed() {
		m.persist()
		m.logger.Info("rules removed", "count", len(res.Removed))
	}

	if len(res.Removed) > 0 {
		m.say(toneSuccess, "Removed rules:")
		for _, r := range res.Removed {
			m.say(toneSuccess, "  %s", r)
		}
	}
	if len(res.Invalid) > 0 || len(bad) > 0 {
		m.say(toneError, "Invalid indices, nothing removed for:")
		for _, idx := range res.Invalid {
			m.say(toneError, "  %d", idx)
		}
		for _, b := range bad {
			m.say(toneError, "  %s", b)
		}
	}
	m.backToMenu()
}

func (m *Model) submitEditIndex(value string) {
	if value == util.Back {
		m.backToMenu()
		return
	}
	idx, err := strconv.Atoi(value)
	if err != nil || idx < 0 {
		m.say(toneError, "Invalid input, enter a rule index.")
		return
	}
	if _, err := m.set.At(idx); err != nil {
		m.say(toneError, "Invalid index, please try again.")
		return
	}
	m.editIndex = idx
	m.mode = modeEditValue
	m.showList = false
}

func (m *Model) submitEditValue(value string) {
	res, err := m.set.Edit(m.editIndex, value)
	switch {
	case err == nil:
		if res.Changed() {
			m.persist()
			m.logger.WithRule(res.New).Info("rule changed", "old", res.Old)
		}
		m.say(toneSuccess, "Changed rule: %s -> %s", res.Old, res.New)
	case errors.Is(err, errors.ErrEmptyRule):
		m.say(toneError, "The new rule cannot be empty.")
	case errors.Is(err, errors.ErrRuleExists):
		m.say(toneWarning, "Rule %s already exists.", strings.TrimSpace(value))
	default:
		m.say(toneError, "The new rule is invalid: %s", errors.Reason(err))
	}
	m.backToMenu()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Rule management"))
	b.WriteString("\n")

	if m.showList {
		b.WriteString(RenderList(m.set.Rules()))
		b.WriteString("\n")
	}

	for _, fb := range m.messages {
		b.WriteString(toneStyle(fb.tone).Render(fb.text))
		b.WriteString("\n")
	}

	if m.quitting {
		return b.String()
	}
	if len(m.messages) > 0 {
		b.WriteString("\n")
	}

	if m.mode == modeMenu {
		b.WriteString(renderMenu())
	} else {
		b.WriteString(styles.Prompt.Render(m.prompt()))
		b.WriteString("\n")
		b.WriteString(m.textInput.View())
		b.WriteString("\n")
	}

	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) prompt() string {
	switch m.mode {
	case modeAdd:
		return "Rules to add (separate with \",\", end with \";\"), or 0 to go back:"
	case modeRemove:
		return "Rule indices to remove (separate with \",\", end with \";\"), or 0 to go back:"
	case modeEditIndex:
		return "Index of the rule to change, or 0 to go back:"
	case modeEditValue:
		current, _ := m.set.At(m.editIndex)
		return fmt.Sprintf("Current rule is %s, enter the new rule:", current)
	}
	return ""
}

func renderMenu() string {
	items := []struct{ key, label string }{
		{"1", "View rules"},
		{"2", "Add rules"},
		{"3", "Remove rules"},
		{"4", "Change a rule"},
		{"0", "Exit"},
	}
	var b strings.Builder
	for _, it := range items {
		b.WriteString(styles.MenuKey.Render(it.key+".") + " " + styles.MenuItem.Render(it.label))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHelp() string {
	keyStyle := styles.HelpKey
	if m.mode == modeMenu {
		return styles.HelpBar.Render(
			keyStyle.Render("1-4") + " choose  " +
				keyStyle.Render("0/q") + " exit",
		)
	}
	return styles.HelpBar.Render(
		keyStyle.Render("enter") + " submit  " +
			keyStyle.Render("esc") + " back",
	)
}

func toneStyle(t tone) lipgloss.Style {
	switch t {
	case toneSuccess:
		return styles.SuccessMsg
	case toneWarning:
		return styles.WarningMsg
	case toneError:
		return styles.ErrorMsg
	default:
		return styles.Text
	}
}

// RenderList formats rules with their 1-based indices, colored by kind.
func RenderList(rules []string) string {
	var b strings.Builder
	b.WriteString(styles.Primary.Render("Current blacklist rules:"))
	b.WriteString("\n")
	if len(rules) == 0 {
		b.WriteString(styles.Warning.Render("No rules"))
		b.WriteString("\n")
		return b.String()
	}
	for i, r := range rules {
		b.WriteString(FormatRule(i+1, r))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatRule renders one rule line as "<index>. <rule>".
func FormatRule(index int, raw string) string {
	kind := rule.KindUnknown
	if r, err := rule.Validate(raw); err == nil {
		kind = r.Kind()
	}
	style := lipgloss.NewStyle().Foreground(styles.KindColor(kind.String()))
	return styles.RuleIndex.Render(fmt.Sprintf("%d.", index)) + style.Render(raw)
}

// Run starts the menu and blocks until the user exits.
func Run(set *ruleset.Set, saver Saver, logger *logging.Logger) error {
	p := tea.NewProgram(New(set, saver, logger))
	_, err := p.Run()
	return err
}
