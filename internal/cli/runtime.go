package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/permute/internal/clipboard"
	"github.com/roach88/permute/internal/config"
	"github.com/roach88/permute/internal/logging"
	"github.com/roach88/permute/internal/session"
	"github.com/roach88/permute/internal/store"
)

// runtime bundles what a command needs once flags are parsed.
type runtime struct {
	ctx       context.Context
	cfg       config.Config
	db        *store.Store
	sess      *session.Session
	formatter *OutputFormatter
	closers   []func() error
}

// newFormatter builds the formatter for a command's output streams.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// setup loads config, configures logging, opens the database and the
// session. Callers must defer rt.Close() when err is nil.
func setup(opts *RootOptions, cmd *cobra.Command, sessOpts session.Options) (*runtime, error) {
	ctx := cmd.Context()
	rt := &runtime{ctx: ctx, formatter: newFormatter(opts, cmd)}

	cfg, err := config.Load(ctx, config.Options{Path: opts.ConfigPath, Lookuper: opts.Env})
	if err != nil {
		return nil, rt.formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Key != "" {
		cfg.Key = opts.Key
	}
	if err := cfg.Validate(); err != nil {
		return nil, rt.formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid flags", err)
	}
	rt.cfg = cfg

	logger, closeLog, err := logging.New(logging.Options{
		Verbose: opts.Verbose,
		Stderr:  cmd.ErrOrStderr(),
		File:    cfg.LogFile,
	})
	if err != nil {
		return nil, rt.formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to open log file", err)
	}
	slog.SetDefault(logger)
	rt.closers = append(rt.closers, closeLog)

	rt.formatter.VerboseLog("Opening %s (key %q)", cfg.Database, cfg.Key)
	db, err := store.Open(cfg.Database)
	if err != nil {
		rt.Close()
		return nil, rt.formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	rt.db = db
	rt.closers = append(rt.closers, db.Close)

	sessOpts.Key = cfg.Key
	sessOpts.Persister = db
	sessOpts.MaxCombinations = cfg.MaxCombinations
	sessOpts.Logger = logger
	if sessOpts.IDs == nil {
		sessOpts.IDs = opts.IDs
	}
	if sessOpts.Source == nil {
		sessOpts.Source = opts.Source
	}
	if sessOpts.Clipboard == nil {
		sessOpts.Clipboard = opts.Clipboard
	}
	if sessOpts.Clipboard == nil {
		sessOpts.Clipboard = clipboard.System{}
	}

	sess, err := session.Open(ctx, sessOpts)
	if err != nil {
		rt.Close()
		return nil, rt.formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to load prompt list", err)
	}
	rt.sess = sess
	return rt, nil
}

// Close releases resources in reverse order of acquisition.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			slog.Error("error closing resource", "error", err)
		}
	}
	rt.closers = nil
}

// resolve maps an id or id prefix to an entry id, reporting failures.
func (rt *runtime) resolve(ref string) (string, error) {
	id, err := rt.sess.Resolve(ref)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, session.ErrAmbiguousEntry):
		return "", rt.formatter.Fail(ExitFailure, ErrCodeAmbiguousEntry, fmt.Sprintf("%q matches more than one entry", ref), err)
	default:
		return "", rt.formatter.Fail(ExitFailure, ErrCodeUnknownEntry, fmt.Sprintf("no entry matches %q", ref), err)
	}
}

// position parses a 1-based position argument into a 0-based index.
func (rt *runtime) position(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, rt.formatter.Fail(ExitCommandError, ErrCodeArgs, fmt.Sprintf("position %q is not a number", arg), err)
	}
	return n - 1, nil
}
