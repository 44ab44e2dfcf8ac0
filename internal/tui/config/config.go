package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"

	"github.com/zxg-sec/blfilter/internal/config"
	"github.com/zxg-sec/blfilter/internal/tui/styles"
)

// ConfigItem represents a single configuration item
type ConfigItem struct {
	Key         string
	Label       string
	Description string
	Type        string   // "string", "int", "select"
	Options     []string // For select type
}

// Category represents a group of config items
type Category struct {
	Name  string
	Items []ConfigItem
}

// Model is the Bubbletea model for the interactive config UI
type Model struct {
	categories     []Category
	categoryIndex  int
	itemIndex      int
	width          int
	editing        bool
	textInput      textinput.Model
	selectIndex    int // For select-type options
	errorMsg       string
	infoMsg        string
	quitting       bool
	configModified bool
	save           func() error
}

// Categories returns the editable configuration items grouped by section.
func Categories() []Category {
	return []Category{
		{
			Name: "Store",
			Items: []ConfigItem{
				{
					Key:         "store.path",
					Label:       "Rule Store",
					Description: "File holding the blacklist, one rule per line",
					Type:        "string",
				},
			},
		},
		{
			Name: "Output",
			Items: []ConfigItem{
				{
					Key:         "output.dir",
					Label:       "Output Directory",
					Description: "Directory for generated output files (empty = working directory)",
					Type:        "string",
				},
				{
					Key:         "output.prefix",
					Label:       "File Prefix",
					Description: "Prefix of generated output file names",
					Type:        "string",
				},
				{
					Key:         "output.timestamp_layout",
					Label:       "Timestamp Layout",
					Description: "Go time layout appended to the prefix",
					Type:        "string",
				},
				{
					Key:         "output.keep",
					Label:       "Keep",
					Description: "Which lines the filter writes",
					Type:        "select",
					Options:     config.ValidKeepModes(),
				},
			},
		},
		{
			Name: "Report",
			Items: []ConfigItem{
				{
					Key:         "report.max_text_width",
					Label:       "Max Text Width",
					Description: "Truncate matched texts to this many columns (0 = no limit)",
					Type:        "int",
				},
				{
					Key:         "report.color",
					Label:       "Color",
					Description: "Color output of the console report",
					Type:        "select",
					Options:     config.ValidColorModes(),
				},
			},
		},
		{
			Name: "Logging",
			Items: []ConfigItem{
				{
					Key:         "logging.level",
					Label:       "Log Level",
					Description: "Minimum level written to the log",
					Type:        "select",
					Options:     config.ValidLogLevels(),
				},
				{
					Key:         "logging.dir",
					Label:       "Log Directory",
					Description: "Directory for blfilter.log (empty = stderr)",
					Type:        "string",
				},
			},
		},
	}
}

// New creates a new config model
func New() Model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 40

	return Model{
		categories: Categories(),
		textInput:  ti,
		save:       writeConfigFile,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		// Clear messages on any key
		m.errorMsg = ""
		m.infoMsg = ""

		if m.editing {
			return m.handleEditingKeypress(msg)
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			m.itemIndex--
			if m.itemIndex < 0 {
				m.categoryIndex--
				if m.categoryIndex < 0 {
					m.categoryIndex = len(m.categories) - 1
				}
				m.itemIndex = len(m.categories[m.categoryIndex].Items) - 1
			}

		case "down", "j":
			m.itemIndex++
			if m.itemIndex >= len(m.categories[m.categoryIndex].Items) {
				m.categoryIndex++
				if m.categoryIndex >= len(m.categories) {
					m.categoryIndex = 0
				}
				m.itemIndex = 0
			}

		case "tab":
			m.categoryIndex++
			if m.categoryIndex >= len(m.categories) {
				m.categoryIndex = 0
			}
			m.itemIndex = 0

		case "shift+tab":
			m.categoryIndex--
			if m.categoryIndex < 0 {
				m.categoryIndex = len(m.categories) - 1
			}
			m.itemIndex = 0

		case "enter", " ":
			item := m.currentItem()
			m.editing = true
			if item.Type == "select" {
				m.selectIndex = m.getCurrentSelectIndex()
			} else {
				m.textInput.SetValue(m.getCurrentValue())
				m.textInput.Focus()
			}

		case "r":
			m.resetCurrentToDefault()
		}
	}

	return m, nil
}

func (m *Model) handleEditingKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item := m.currentItem()

	switch msg.String() {
	case "esc":
		m.editing = false
		m.textInput.SetValue("")
		return m, nil

	case "enter":
		value := m.textInput.Value()
		if item.Type == "select" {
			value = item.Options[m.selectIndex]
		}
		if err := m.validateAndSet(item, value); err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		m.saveConfig()
		m.editing = false
		m.textInput.SetValue("")
		return m, nil

	case "up", "k":
		if item.Type == "select" {
			m.selectIndex--
			if m.selectIndex < 0 {
				m.selectIndex = len(item.Options) - 1
			}
			return m, nil
		}

	case "down", "j":
		if item.Type == "select" {
			m.selectIndex++
			if m.selectIndex >= len(item.Options) {
				m.selectIndex = 0
			}
			return m, nil
		}
	}

	if item.Type != "select" {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(styles.Title.Render("blfilter configuration"))
	b.WriteString("\n")

	configPath := viper.ConfigFileUsed()
	if configPath == "" {
		configPath = config.ConfigFile() + " (not created)"
	}
	b.WriteString(styles.Muted.Render(fmt.Sprintf("Config file: %s", configPath)))
	b.WriteString("\n\n")

	for ci, cat := range m.categories {
		isActiveCategory := ci == m.categoryIndex

		catStyle := styles.Muted.Bold(true)
		if isActiveCategory {
			catStyle = styles.Primary.Bold(true)
		}
		b.WriteString(catStyle.Render(fmt.Sprintf("[ %s ]", cat.Name)))
		b.WriteString("\n")

		for ii, item := range cat.Items {
			b.WriteString(m.renderItem(item, isActiveCategory && ii == m.itemIndex))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.editing {
		b.WriteString(m.renderEditOverlay())
	} else {
		b.WriteString(styles.Muted.Render(m.currentItem().Description))
		b.WriteString("\n")
	}

	if m.errorMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorMsg.Render("Error: " + m.errorMsg))
	}
	if m.infoMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.SuccessMsg.Render(m.infoMsg))
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderItem(item ConfigItem, selected bool) string {
	value := m.getDisplayValue(item)
	if value == "" {
		value = "(empty)"
	}
	paddedLabel := fmt.Sprintf("%-20s", item.Label)

	if selected {
		cursor := styles.Secondary.Render(">")
		return fmt.Sprintf("  %s %s  %s", cursor, styles.Text.Bold(true).Render(paddedLabel), styles.Primary.Render(value))
	}
	return fmt.Sprintf("    %s  %s", styles.Muted.Render(paddedLabel), styles.Text.Render(value))
}

func (m Model) renderEditOverlay() string {
	item := m.currentItem()

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.PrimaryColor).
		Padding(1, 2).
		Width(50)

	var content string
	if item.Type == "select" {
		content = fmt.Sprintf("Select %s:\n\n", item.Label)
		for i, opt := range item.Options {
			if i == m.selectIndex {
				content += styles.Primary.Bold(true).Render(fmt.Sprintf(" > %s ", opt)) + "\n"
			} else {
				content += styles.Text.Render(fmt.Sprintf("   %s ", opt)) + "\n"
			}
		}
		content += "\n" + styles.Muted.Render("j/k or arrows to select, enter to confirm, esc to cancel")
	} else {
		content = fmt.Sprintf("Edit %s:\n\n", item.Label)
		content += m.textInput.View()
		content += "\n\n" + styles.Muted.Render("enter to save, esc to cancel")
	}

	return "\n" + borderStyle.Render(content)
}

func (m Model) renderHelp() string {
	keyStyle := styles.HelpKey

	if m.editing {
		return styles.HelpBar.Render(
			keyStyle.Render("enter") + " save  " +
				keyStyle.Render("esc") + " cancel",
		)
	}

	return styles.HelpBar.Render(
		keyStyle.Render("j/k") + " navigate  " +
			keyStyle.Render("tab") + " next category  " +
			keyStyle.Render("enter") + " edit  " +
			keyStyle.Render("r") + " reset  " +
			keyStyle.Render("q") + " quit",
	)
}

func (m Model) currentItem() ConfigItem {
	return m.categories[m.categoryIndex].Items[m.itemIndex]
}

func (m Model) getCurrentValue() string {
	return m.getDisplayValue(m.currentItem())
}

func (m Model) getDisplayValue(item ConfigItem) string {
	if item.Type == "int" {
		return strconv.Itoa(viper.GetInt(item.Key))
	}
	return viper.GetString(item.Key)
}

func (m Model) getCurrentSelectIndex() int {
	item := m.currentItem()
	if i := slices.Index(item.Options, viper.GetString(item.Key)); i >= 0 {
		return i
	}
	return 0
}

func (m *Model) validateAndSet(item ConfigItem, value string) error {
	_, err := Apply(item, value)
	return err
}

// Apply converts value to the item's type and sets it in viper. The previous
// value is restored when the resulting configuration fails validation.
func Apply(item ConfigItem, value string) (any, error) {
	var typed any = value
	switch item.Type {
	case "int":
		intVal, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("expected integer value")
		}
		typed = intVal
	case "select":
		if !slices.Contains(item.Options, value) {
			return nil, fmt.Errorf("invalid option %s (valid: %s)", value, strings.Join(item.Options, ", "))
		}
	}

	previous := viper.Get(item.Key)
	viper.Set(item.Key, typed)
	if _, err := config.Load(); err != nil {
		viper.Set(item.Key, previous)
		return nil, err
	}
	return typed, nil
}

// Lookup returns the config item for key.
func Lookup(key string) (ConfigItem, bool) {
	for _, cat := range Categories() {
		for _, item := range cat.Items {
			if item.Key == key {
				return item, true
			}
		}
	}
	return ConfigItem{}, false
}

func (m *Model) saveConfig() {
	if err := m.save(); err != nil {
		m.errorMsg = fmt.Sprintf("Failed to save config: %v", err)
		return
	}
	m.infoMsg = "Saved!"
	m.configModified = true
}

func (m *Model) resetCurrentToDefault() {
	item := m.currentItem()
	if defaultVal, ok := config.DefaultValues()[item.Key]; ok {
		viper.Set(item.Key, defaultVal)
		m.saveConfig()
		m.infoMsg = fmt.Sprintf("Reset %s to default", item.Label)
	}
}

// Modified reports whether any change was saved.
func (m Model) Modified() bool {
	return m.configModified
}

func writeConfigFile() error {
	_, err := config.WriteConfigFile()
	return err
}

// Run starts the interactive config UI and reports whether any change was
// saved before it exited.
func Run() (bool, error) {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	switch m := final.(type) {
	case Model:
		return m.Modified(), nil
	case *Model:
		return m.Modified(), nil
	}
	return false, nil
}
