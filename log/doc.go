// Package log provides a simple, leveled logging interface for agentgraph
// applications.
//
// The engine logs scheduler decisions, hook vetoes and deadlock diagnostics
// through the package-level logger, which callers can replace or silence.
//
// # Log Levels
//
// Five levels, in order of increasing severity:
//
//   - LogLevelDebug: detailed scheduling and wiring information
//   - LogLevelInfo: general informational messages
//   - LogLevelWarn: potentially problematic situations
//   - LogLevelError: failures that need attention
//   - LogLevelNone: disables all output
//
// # Example Usage
//
//	logger := log.NewDefaultLogger(log.LogLevelInfo)
//
//	logger.Info("pipeline starting")
//	logger.Debug("consuming edge: %v", edge)
//	logger.Warn("pass %d produced no output", pass)
//	logger.Error("node failed: %v", err)
//
// To write somewhere other than stderr:
//
//	file, err := os.OpenFile("run.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer file.Close()
//
//	logger := log.NewCustomLogger(file, log.LogLevelDebug)
//
// # golog Integration
//
// For applications already using github.com/kataras/golog, a minimal wrapper
// forwards calls to an existing golog.Logger:
//
//	glogger := golog.New()
//	glogger.SetPrefix("[myapp] ")
//
//	logger := log.NewGologLogger(glogger)
//	log.SetDefaultLogger(logger)
//
// # Custom Loggers
//
// Any type implementing the Logger interface can be installed with
// SetDefaultLogger; use NoOpLogger to silence the engine entirely.
//
// The DefaultLogger is safe for concurrent use; the underlying standard
// library log.Logger handles synchronization internally.
package log
