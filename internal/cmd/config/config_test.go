package config

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appconfig "github.com/zxg-sec/blfilter/internal/config"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func setupConfigTest(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	appconfig.SetDefaults()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	return filepath.Join(home, "xdg", "blfilter", "config.yaml")
}

func TestConfigShow(t *testing.T) {
	setupConfigTest(t)
	viper.Set("store.path", "custom.txt")

	output, err := executeCommand(NewCommand(), "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{"Config file: (none - using defaults)", "store:", "path: custom.txt", "keep: retained"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestConfigSet(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "select", key: "output.keep", value: "matched"},
		{name: "int", key: "report.max_text_width", value: "80"},
		{name: "string", key: "store.path", value: "/data/rules.txt"},
		{name: "unknown key", key: "output.color", value: "x", wantErr: "unknown configuration key"},
		{name: "bad option", key: "report.color", value: "sometimes", wantErr: "invalid value for report.color"},
		{name: "not an int", key: "report.max_text_width", value: "wide", wantErr: "expected integer"},
		{name: "negative", key: "report.max_text_width", value: "-1", wantErr: "report.max_text_width"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := setupConfigTest(t)

			output, err := executeCommand(NewCommand(), "set", tt.key, tt.value)

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				if _, statErr := os.Stat(configFile); statErr == nil {
					t.Error("config file should not be written on error")
				}
				return
			}

			if err != nil {
				t.Fatalf("config set failed: %v", err)
			}
			if !strings.Contains(output, "Config saved to "+configFile) {
				t.Errorf("output = %s", output)
			}
			data, err := os.ReadFile(configFile)
			if err != nil {
				t.Fatalf("config file not written: %v", err)
			}
			if !strings.Contains(string(data), tt.value) {
				t.Errorf("config file missing %q:\n%s", tt.value, data)
			}
		})
	}
}

func TestConfigSetKeepsPreviousValueOnError(t *testing.T) {
	setupConfigTest(t)

	if _, err := executeCommand(NewCommand(), "set", "report.max_text_width", "-3"); err == nil {
		t.Fatal("expected a validation error")
	}
	if got := viper.GetInt("report.max_text_width"); got != 0 {
		t.Errorf("report.max_text_width = %d, want 0", got)
	}
}

func TestConfigInit(t *testing.T) {
	configFile := setupConfigTest(t)

	output, err := executeCommand(NewCommand(), "init")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(output, "Created config file at "+configFile) {
		t.Errorf("output = %s", output)
	}

	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("generated config does not parse: %v", err)
	}
	cfg, err := appconfig.Load()
	if err != nil {
		t.Fatalf("generated config does not validate: %v", err)
	}
	if *cfg != *appconfig.Default() {
		t.Errorf("generated config = %+v, want defaults", cfg)
	}

	if _, err := executeCommand(NewCommand(), "init"); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second init err = %v, want already exists", err)
	}
}

func TestConfigPath(t *testing.T) {
	configFile := setupConfigTest(t)

	output, err := executeCommand(NewCommand(), "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	for _, want := range []string{"Default path: " + configFile, "Search paths:", "BLFILTER_STORE_PATH"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestConfigReset(t *testing.T) {
	configFile := setupConfigTest(t)
	viper.Set("output.keep", "matched")
	viper.Set("output.prefix", "clean")

	t.Run("single key", func(t *testing.T) {
		output, err := executeCommand(NewCommand(), "reset", "output.keep")
		if err != nil {
			t.Fatalf("config reset failed: %v", err)
		}
		if !strings.Contains(output, "Reset output.keep to default: retained") {
			t.Errorf("output = %s", output)
		}
		if got := viper.GetString("output.keep"); got != "retained" {
			t.Errorf("output.keep = %q", got)
		}
		if got := viper.GetString("output.prefix"); got != "clean" {
			t.Errorf("output.prefix = %q, want untouched", got)
		}
		if _, err := os.Stat(configFile); err != nil {
			t.Errorf("config file not written: %v", err)
		}
	})

	t.Run("all", func(t *testing.T) {
		if _, err := executeCommand(NewCommand(), "reset"); err != nil {
			t.Fatalf("config reset failed: %v", err)
		}
		if got := viper.GetString("output.prefix"); got != "output" {
			t.Errorf("output.prefix = %q, want default", got)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		if _, err := executeCommand(NewCommand(), "reset", "nope"); err == nil {
			t.Error("expected an error for an unknown key")
		}
	})
}

func TestConfigEdit(t *testing.T) {
	configFile := setupConfigTest(t)
	t.Setenv("EDITOR", "myeditor")
	t.Setenv("VISUAL", "")

	var gotName string
	var gotArgs []string
	origCommand := execCommand
	execCommand = func(name string, args ...string) *exec.Cmd {
		gotName, gotArgs = name, args
		cs := append([]string{"-test.run=TestHelperProcess", "--"}, args...)
		cmd := exec.Command(os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
		return cmd
	}
	t.Cleanup(func() { execCommand = origCommand })

	output, err := executeCommand(NewCommand(), "edit")
	if err != nil {
		t.Fatalf("config edit failed: %v", err)
	}

	if gotName != "myeditor" || len(gotArgs) != 1 || gotArgs[0] != configFile {
		t.Errorf("editor invoked as %s %v, want myeditor %s", gotName, gotArgs, configFile)
	}
	if _, err := os.Stat(configFile); err != nil {
		t.Errorf("edit should create the config file first: %v", err)
	}
	if !strings.Contains(output, "Config file saved: "+configFile) {
		t.Errorf("output = %s", output)
	}
}

func TestConfigEdit_NoEditor(t *testing.T) {
	setupConfigTest(t)
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")

	origLookPath := execLookPath
	execLookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	t.Cleanup(func() { execLookPath = origLookPath })

	_, err := executeCommand(NewCommand(), "edit")
	if err == nil || !strings.Contains(err.Error(), "no editor found") {
		t.Errorf("err = %v, want no editor error", err)
	}
}

func TestConfigInteractive(t *testing.T) {
	configFile := setupConfigTest(t)

	tests := []struct {
		name       string
		saved      bool
		err        error
		wantOutput string
		wantErr    string
	}{
		{name: "saved", saved: true, wantOutput: "Config saved to " + configFile},
		{name: "unchanged"},
		{name: "ui error", err: errors.New("no terminal"), wantErr: "no terminal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			origTUI := runTUI
			runTUI = func() (bool, error) {
				called = true
				return tt.saved, tt.err
			}
			t.Cleanup(func() { runTUI = origTUI })

			output, err := executeCommand(NewCommand())
			if !called {
				t.Error("config without subcommand should start the interactive UI")
			}
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Errorf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("config failed: %v", err)
			}
			if tt.wantOutput != "" && !strings.Contains(output, tt.wantOutput) {
				t.Errorf("output = %q, want %q", output, tt.wantOutput)
			}
			if tt.wantOutput == "" && strings.Contains(output, "Config saved") {
				t.Errorf("unexpected save message: %q", output)
			}
		})
	}
}

// TestHelperProcess stands in for the editor started by TestConfigEdit.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	os.Exit(0)
}
