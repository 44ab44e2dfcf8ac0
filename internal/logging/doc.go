// Package logging provides structured logging for blfilter.
//
// It wraps Go's log/slog with a JSON handler and lets callers attach
// persistent context (the running command, the rule being processed) to
// child loggers.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	log := logger.WithCommand("filter")
//	log.WithRule("*.gov..cn").Warn("skipping rule", "error", err)
//
// Output:
//
//	{"time":"...","level":"WARN","msg":"skipping rule","command":"filter","rule":"*.gov..cn","error":"..."}
//
// An empty directory sends entries to stderr. Use [NopLogger] in tests.
package logging
