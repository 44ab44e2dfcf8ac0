// Package cmd implements the blfilter command line.
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	configcmd "github.com/zxg-sec/blfilter/internal/cmd/config"
	"github.com/zxg-sec/blfilter/internal/config"
	"github.com/zxg-sec/blfilter/internal/errors"
	"github.com/zxg-sec/blfilter/internal/logging"
	"github.com/zxg-sec/blfilter/internal/ruleset"
)

// Wrapper values to allow testing
var (
	appFs      afero.Fs = afero.NewOsFs()
	now                 = time.Now
	isTerminal          = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
)

// env carries the per-invocation state set up by the root command.
type env struct {
	cfg    *config.Config
	logger *logging.Logger
}

func (e *env) store() *ruleset.Store {
	return ruleset.NewStore(appFs, e.cfg.Store.ResolveStorePath())
}

// logsToFile reports whether log entries go to a file rather than to the
// stderr stream the console diagnostics already use.
func (e *env) logsToFile() bool {
	return e.cfg.Logging.Dir != ""
}

// Exit codes
const (
	ExitFailure  = 1 // the command aborted
	ExitRejected = 2 // some input was rejected; everything else was applied
)

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsRecoverable(err):
		return ExitRejected
	default:
		return ExitFailure
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd, e := newRootCommand()
	return e.execute(rootCmd)
}

func (e *env) execute(rootCmd *cobra.Command) error {
	err := rootCmd.Execute()
	if err != nil && e.logsToFile() {
		if errors.GetSeverity(err) == errors.SeverityError {
			e.logger.Error("command failed", "error", err.Error())
		} else {
			e.logger.Warn("command rejected input", "error", err.Error())
		}
	}
	// PersistentPostRun is skipped when the command fails.
	_ = e.logger.Close()
	return err
}

// newRootCommand builds the complete command tree and the state its commands share.
func newRootCommand() (*cobra.Command, *env) {
	e := &env{cfg: config.Default(), logger: logging.NopLogger()}

	rootCmd := &cobra.Command{
		Use:   "blfilter",
		Short: "Filter text lines against an IP and domain blacklist",
		Long: `blfilter removes the lines of a text file that mention a blacklisted
identifier. Rules are exact IPv4 addresses (127.0.0.1), wildcard IPv4
addresses (192.168.*.*), CIDR blocks (10.0.0.0/8), domains (example.com)
and wildcard domains (*.gov.cn). Rules live in a plain text file, one per line.

Run 'blfilter rules' to manage the blacklist interactively, or
'blfilter filter -u <input>' to filter a file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = e.logger.Close()
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.config/blfilter/config.yaml)")
	flags.StringP("store", "s", "", "rule store file (default is blacklist_rules.txt)")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newFilterCommand(e))
	rootCmd.AddCommand(newRulesCommand(e))
	rootCmd.AddCommand(newLogsCommand(e))
	configcmd.Register(rootCmd)

	return rootCmd, e
}

func (e *env) setup(cmd *cobra.Command) error {
	initConfig(cmd.Root())

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: invalid configuration, using defaults: %v\n", err)
		cfg = config.Default()
	}
	e.cfg = cfg

	e.logger = createLogger(cmd, cfg.Logging).WithCommand(cmd.Name())
	return nil
}

// createLogger returns a NopLogger if the log file cannot be opened.
func createLogger(cmd *cobra.Command, cfg config.LoggingConfig) *logging.Logger {
	if cfg.Dir == "" {
		return logging.NewLoggerTo(cmd.ErrOrStderr(), cfg.Level)
	}
	logger, err := logging.NewLogger(cfg.Dir, cfg.Level)
	if err != nil {
		// Log creation failure shouldn't prevent the command from running
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to create logger: %v\n", err)
		return logging.NopLogger()
	}
	return logger
}

func initConfig(root *cobra.Command) {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	flags := root.PersistentFlags()
	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("store.path", flags.Lookup("store"))
	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/blfilter")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("BLFILTER")
	// Replace dots with underscores for nested keys in env vars
	// e.g., BLFILTER_STORE_PATH for store.path
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
