// Command ymirdb runs an interactive, single-session, in-memory integer
// database: a line-oriented REPL reading commands from stdin and writing
// replies to stdout, as described in spec.md.
package main

import (
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ymirdb/ymirdb/internal/obs"
	"github.com/ymirdb/ymirdb/internal/repl"
)

func main() {
	cfg := obs.LoadConfig()

	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	if lvl, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		logConfig.Level = zap.NewAtomicLevelAt(lvl)
	}

	log := zap.Must(logConfig.Build())
	defer log.Sync()
	log = log.Named("main").With(zap.String("session_id", uuid.NewString()))

	log.Info("starting session", zap.String("prompt", cfg.Prompt))

	sess := repl.NewSession(cfg.Prompt, log)
	if err := sess.Run(os.Stdin, os.Stdout); err != nil {
		// A read error still exits 0 (spec §6: exit code is always 0); it is
		// only ever a stdin plumbing problem, not a database-invariant one.
		log.Error("session ended with a read error", zap.Error(err))
	}
}
