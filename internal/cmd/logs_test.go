package cmd

import (
	"path/filepath"
	"strings"
	"testing"
)

const sampleLog = `{"time":"2024-03-09T06:00:00Z","level":"INFO","msg":"rules added","command":"add","count":2}
{"time":"2024-03-09T07:00:00Z","level":"WARN","msg":"skipping invalid stored rule","command":"filter","rule":"bad..rule"}
not json
`

func TestLogsCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "all",
			want: []string{
				"[06:00:00.000] [INFO] rules added command=add count=2",
				"[07:00:00.000] [WARN] skipping invalid stored rule command=filter rule=bad..rule",
				"not json",
			},
		},
		{
			name:    "level",
			args:    []string{"--level", "warn"},
			want:    []string{"skipping invalid stored rule"},
			notWant: []string{"rules added"},
		},
		{
			name:    "since",
			args:    []string{"--since", "30m"},
			want:    []string{"skipping invalid stored rule"},
			notWant: []string{"rules added"},
		},
		{
			name:    "grep",
			args:    []string{"--grep", "bad\\.\\.rule"},
			want:    []string{"skipping invalid stored rule"},
			notWant: []string{"rules added"},
		},
		{
			name:    "tail",
			args:    []string{"-n", "1"},
			want:    []string{"not json"},
			notWant: []string{"rules added", "skipping"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := setupTestEnvironment(t)
			logDir := t.TempDir()
			t.Setenv("BLFILTER_LOGGING_DIR", logDir)
			writeFile(t, fs, filepath.Join(logDir, "blfilter.log"), sampleLog)

			output, err := executeCommand(newTestRootCommand(), append([]string{"logs"}, tt.args...)...)
			if err != nil {
				t.Fatalf("logs failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("output missing %q:\n%s", want, output)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(output, notWant) {
					t.Errorf("output should not contain %q:\n%s", notWant, output)
				}
			}
		})
	}
}

func TestLogsCommand_NoLogDir(t *testing.T) {
	setupTestEnvironment(t)
	t.Setenv("BLFILTER_LOGGING_DIR", "")

	output, err := executeCommand(newTestRootCommand(), "logs")
	if err != nil {
		t.Fatalf("logs failed: %v", err)
	}
	if !strings.Contains(output, "logging.dir is not set") {
		t.Errorf("output = %s", output)
	}
}

func TestLogsCommand_InvalidFlags(t *testing.T) {
	fs := setupTestEnvironment(t)
	logDir := t.TempDir()
	t.Setenv("BLFILTER_LOGGING_DIR", logDir)
	writeFile(t, fs, filepath.Join(logDir, "blfilter.log"), sampleLog)

	if _, err := executeCommand(newTestRootCommand(), "logs", "--since", "yesterday"); err == nil {
		t.Error("expected an error for an invalid duration")
	}
	if _, err := executeCommand(newTestRootCommand(), "logs", "--grep", "("); err == nil {
		t.Error("expected an error for an invalid pattern")
	}
}
