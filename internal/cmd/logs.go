package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zxg-sec/blfilter/internal/logging"
	"github.com/zxg-sec/blfilter/internal/tui/styles"
)

type logsOptions struct {
	tail  int
	level string
	since string
	grep  string
}

func newLogsCommand(e *env) *cobra.Command {
	var opts logsOptions

	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "View the blfilter log",
		Long: `View and filter the blfilter log file.

The log is only kept on disk when logging.dir is set; otherwise entries go to
stderr as they happen.

Examples:
  # Show the last 50 entries
  blfilter logs

  # Show every warning about skipped rules
  blfilter logs -n 0 --level warn --grep skipped

  # Show entries from the last hour
  blfilter logs --since 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runLogs(cmd, opts)
		},
	}

	logsCmd.Flags().IntVarP(&opts.tail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().StringVar(&opts.level, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&opts.since, "since", "", "Show entries since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&opts.grep, "grep", "", "Filter entries matching pattern (regex)")

	return logsCmd
}

// logEntry represents a parsed JSON log line
type logEntry struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Msg     string         `json:"msg"`
	Command string         `json:"command,omitempty"`
	Rule    string         `json:"rule,omitempty"`
	Extra   map[string]any `json:"-"` // Captures additional fields
}

// UnmarshalJSON implements custom unmarshaling to capture extra fields
func (e *logEntry) UnmarshalJSON(data []byte) error {
	// First, unmarshal known fields using a type alias to avoid recursion
	type Alias logEntry
	aux := &struct {
		*Alias
	}{
		Alias: (*Alias)(e),
	}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, known := range []string{"time", "level", "msg", "command", "rule"} {
		delete(all, known)
	}
	if len(all) > 0 {
		e.Extra = all
	}
	return nil
}

type logFilter struct {
	minLevel int
	since    time.Time
	grep     *regexp.Regexp
}

// levelPriority returns the priority of a log level for filtering
func levelPriority(level string) int {
	switch strings.ToUpper(level) {
	case logging.LevelDebug:
		return 0
	case logging.LevelInfo:
		return 1
	case logging.LevelWarn:
		return 2
	case logging.LevelError:
		return 3
	default:
		return -1
	}
}

func (f logFilter) passes(entry *logEntry) bool {
	if f.minLevel >= 0 && levelPriority(entry.Level) < f.minLevel {
		return false
	}
	if !f.since.IsZero() && entry.Time.Before(f.since) {
		return false
	}
	if f.grep != nil {
		// Search in message, context and extra fields
		searchText := entry.Msg + " " + entry.Command + " " + entry.Rule
		for _, v := range entry.Extra {
			searchText += " " + fmt.Sprintf("%v", v)
		}
		if !f.grep.MatchString(searchText) {
			return false
		}
	}
	return true
}

func (e *env) runLogs(cmd *cobra.Command, opts logsOptions) error {
	out := cmd.OutOrStdout()

	if e.cfg.Logging.Dir == "" {
		fmt.Fprintln(out, "No log file: logging.dir is not set, entries are written to stderr.")
		fmt.Fprintln(out, "Run 'blfilter config set logging.dir <dir>' to keep a log file.")
		return nil
	}

	logPath := filepath.Join(e.cfg.Logging.Dir, logging.LogFileName)
	if exists, _ := afero.Exists(appFs, logPath); !exists {
		fmt.Fprintf(out, "No logs found at %s\n", logPath)
		return nil
	}

	f := logFilter{minLevel: -1}
	if opts.level != "" {
		f.minLevel = levelPriority(logging.ParseLevel(opts.level))
	}
	if opts.since != "" {
		duration, err := time.ParseDuration(opts.since)
		if err != nil {
			return fmt.Errorf("invalid duration format: %w", err)
		}
		f.since = now().Add(-duration)
	}
	if opts.grep != "" {
		re, err := regexp.Compile(opts.grep)
		if err != nil {
			return fmt.Errorf("invalid grep pattern: %w", err)
		}
		f.grep = re
	}

	file, err := appFs.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	printer := newLogPrinter(out, e.cfg.Report.Color)
	entries, err := readLogEntries(file, f, printer)
	if err != nil {
		return err
	}

	// Apply tail limit
	if opts.tail > 0 && len(entries) > opts.tail {
		entries = entries[len(entries)-opts.tail:]
	}
	for _, entry := range entries {
		fmt.Fprintln(out, entry)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No matching log entries found.")
	}
	return nil
}

func readLogEntries(r io.Reader, f logFilter, p *logPrinter) ([]string, error) {
	var entries []string
	scanner := bufio.NewScanner(r)

	// Increase buffer size for potentially long log lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		var entry logEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			// If we can't parse as JSON, display raw line
			entries = append(entries, line)
			continue
		}
		if !f.passes(&entry) {
			continue
		}
		entries = append(entries, p.format(&entry))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}
	return entries, nil
}

// logPrinter formats log entries with styles bound to the output writer.
type logPrinter struct {
	sheet *styles.Sheet
	key   lipgloss.Style
}

func newLogPrinter(w io.Writer, colorMode string) *logPrinter {
	r := styles.NewRenderer(w, colorMode)
	return &logPrinter{
		sheet: styles.NewSheet(r),
		key:   r.NewStyle().Foreground(styles.SecondaryColor),
	}
}

func (p *logPrinter) levelStyle(level string) lipgloss.Style {
	switch strings.ToUpper(level) {
	case logging.LevelDebug:
		return p.sheet.Muted
	case logging.LevelWarn:
		return p.sheet.Warning
	case logging.LevelError:
		return p.sheet.Rule
	default:
		return p.sheet.Text
	}
}

// format renders an entry as "[15:04:05.000] [LEVEL] msg key=value ...".
func (p *logPrinter) format(entry *logEntry) string {
	var sb strings.Builder

	sb.WriteString(p.sheet.Muted.Render("[" + entry.Time.Format("15:04:05.000") + "]"))
	sb.WriteString(" ")
	sb.WriteString(p.levelStyle(entry.Level).Render("[" + strings.ToUpper(entry.Level) + "]"))
	sb.WriteString(" ")
	sb.WriteString(entry.Msg)

	if entry.Command != "" {
		sb.WriteString(" " + p.key.Render("command=") + entry.Command)
	}
	if entry.Rule != "" {
		sb.WriteString(" " + p.key.Render("rule=") + entry.Rule)
	}

	keys := make([]string, 0, len(entry.Extra))
	for k := range entry.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(" " + p.key.Render(k+"=") + fmt.Sprintf("%v", entry.Extra[k]))
	}

	return sb.String()
}
