package config

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"

	"github.com/zxg-sec/blfilter/internal/config"
)

func newTestModel(t *testing.T) (Model, *int) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults()

	saves := 0
	m := New()
	m.save = func() error {
		saves++
		return nil
	}
	return m, &saves
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	switch v := next.(type) {
	case Model:
		return v
	case *Model:
		return *v
	default:
		t.Fatalf("unexpected model type %T", next)
		return m
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestCategories_CoverConfigKeys(t *testing.T) {
	keys := make(map[string]bool)
	for _, cat := range Categories() {
		for _, item := range cat.Items {
			keys[item.Key] = true
		}
	}
	for _, want := range []string{
		"store.path", "output.dir", "output.prefix", "output.timestamp_layout",
		"output.keep", "report.max_text_width", "report.color", "logging.level", "logging.dir",
	} {
		if !keys[want] {
			t.Errorf("missing config item %q", want)
		}
	}
}

func TestNavigationWraps(t *testing.T) {
	m, _ := newTestModel(t)

	m = update(t, m, key("up"))
	last := len(m.categories) - 1
	if m.categoryIndex != last || m.itemIndex != len(m.categories[last].Items)-1 {
		t.Errorf("up from top = (%d,%d), want last item", m.categoryIndex, m.itemIndex)
	}

	m = update(t, m, key("down"))
	if m.categoryIndex != 0 || m.itemIndex != 0 {
		t.Errorf("down from bottom = (%d,%d), want (0,0)", m.categoryIndex, m.itemIndex)
	}

	m = update(t, m, key("tab"))
	if m.categoryIndex != 1 || m.itemIndex != 0 {
		t.Errorf("tab = (%d,%d), want (1,0)", m.categoryIndex, m.itemIndex)
	}
}

func TestEditStringItem(t *testing.T) {
	m, saves := newTestModel(t)

	// store.path is the first item.
	m = update(t, m, key("enter"))
	if !m.editing {
		t.Fatal("enter should start editing")
	}
	if got := m.textInput.Value(); got != "blacklist_rules.txt" {
		t.Errorf("input prefilled with %q", got)
	}

	m.textInput.SetValue("custom.txt")
	m = update(t, m, key("enter"))

	if m.editing {
		t.Error("editing should end after a valid value")
	}
	if got := viper.GetString("store.path"); got != "custom.txt" {
		t.Errorf("store.path = %q, want custom.txt", got)
	}
	if *saves != 1 {
		t.Errorf("saves = %d, want 1", *saves)
	}
	if !m.Modified() {
		t.Error("Modified() = false after a save")
	}
}

func TestEditRejectsInvalidValue(t *testing.T) {
	m, saves := newTestModel(t)
	m.categoryIndex, m.itemIndex = 2, 0 // report.max_text_width

	m = update(t, m, key("enter"))
	m.textInput.SetValue("-5")
	m = update(t, m, key("enter"))

	if !m.editing {
		t.Error("editing should continue after an invalid value")
	}
	if !strings.Contains(m.errorMsg, "report.max_text_width") {
		t.Errorf("errorMsg = %q, want validation error", m.errorMsg)
	}
	if got := viper.GetInt("report.max_text_width"); got != 0 {
		t.Errorf("report.max_text_width = %d, want previous value kept", got)
	}
	if *saves != 0 {
		t.Errorf("saves = %d, want 0", *saves)
	}
}

func TestEditSelectItem(t *testing.T) {
	m, _ := newTestModel(t)
	m.categoryIndex, m.itemIndex = 1, 3 // output.keep

	m = update(t, m, key("enter"))
	if m.selectIndex != 0 {
		t.Fatalf("selectIndex = %d, want current option (retained)", m.selectIndex)
	}
	m = update(t, m, key("down"))
	m = update(t, m, key("enter"))

	if got := viper.GetString("output.keep"); got != config.KeepMatched {
		t.Errorf("output.keep = %q, want %q", got, config.KeepMatched)
	}
}

func TestEscCancelsEdit(t *testing.T) {
	m, saves := newTestModel(t)

	m = update(t, m, key("enter"))
	m.textInput.SetValue("other.txt")
	m = update(t, m, key("esc"))

	if m.editing {
		t.Error("esc should end editing")
	}
	if got := viper.GetString("store.path"); got != "blacklist_rules.txt" {
		t.Errorf("store.path = %q, want unchanged", got)
	}
	if *saves != 0 {
		t.Errorf("saves = %d, want 0", *saves)
	}
}

func TestResetToDefault(t *testing.T) {
	m, _ := newTestModel(t)
	viper.Set("store.path", "elsewhere.txt")

	m = update(t, m, key("r"))

	if got := viper.GetString("store.path"); got != "blacklist_rules.txt" {
		t.Errorf("store.path = %q after reset", got)
	}
	if !strings.Contains(m.infoMsg, "Reset Rule Store") {
		t.Errorf("infoMsg = %q", m.infoMsg)
	}
}

func TestSaveFailureShowsError(t *testing.T) {
	m, _ := newTestModel(t)
	m.save = func() error { return errors.New("disk full") }

	m = update(t, m, key("enter"))
	m.textInput.SetValue("x.txt")
	m = update(t, m, key("enter"))

	if !strings.Contains(m.errorMsg, "disk full") {
		t.Errorf("errorMsg = %q", m.errorMsg)
	}
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()

	for _, want := range []string{"[ Store ]", "[ Output ]", "[ Report ]", "[ Logging ]", "Rule Store", "blacklist_rules.txt"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	m = update(t, m, key("q"))
	if m.View() != "" {
		t.Error("View() should be empty after quitting")
	}
}
