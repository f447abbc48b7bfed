package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/permute/internal/clipboard"
	"github.com/roach88/permute/internal/permute"
	"github.com/roach88/permute/internal/session"
)

// SequenceResult is the JSON shape of generate and shuffle output.
type SequenceResult struct {
	Count   int      `json:"count"`
	Prompts []string `json:"prompts"`
	Copied  bool     `json:"copied,omitempty"`
}

func printSequence(rt *runtime, seq permute.Sequence, copied bool) error {
	if rt.formatter.Format == "json" {
		prompts := []string(seq)
		if prompts == nil {
			prompts = []string{}
		}
		return rt.formatter.Success(SequenceResult{Count: len(seq), Prompts: prompts, Copied: copied})
	}
	for _, line := range seq {
		fmt.Fprintln(rt.formatter.Writer, line)
	}
	return nil
}

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Copy bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate every combination of the variable lists",
		Long: `Generate the cartesian product of all variable lists, one prompt per
line. The first list varies slowest. Blank variants are skipped, and a
list with no usable variants makes the result empty.

The result replaces the previously generated sequence.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Copy, "copy", false, "also copy the prompts to the clipboard")

	return cmd
}

func runGenerate(opts *GenerateOptions, cmd *cobra.Command) error {
	rt, err := setup(opts.RootOptions, cmd, session.Options{})
	if err != nil {
		return err
	}
	defer rt.Close()

	seq, err := rt.sess.Generate(rt.ctx)
	if err != nil {
		if errors.Is(err, permute.ErrTooManyCombinations) {
			return rt.formatter.Fail(ExitFailure, ErrCodeTooMany,
				"too many combinations; raise max_combinations or trim the lists", err)
		}
		return rt.formatter.Fail(ExitCommandError, ErrCodeGeneric, "generation failed", err)
	}
	rt.formatter.VerboseLog("Generated %d prompt(s)", len(seq))

	copied := false
	if opts.Copy && len(seq) > 0 {
		// Generation already succeeded; a missing clipboard only loses the copy.
		if err := rt.sess.Copy(); err != nil {
			slog.Warn("prompts not copied", "error", err)
			rt.formatter.VerboseLog("Clipboard copy skipped: %v", err)
		} else {
			copied = true
		}
	}
	return printSequence(rt, seq, copied)
}

// ShuffleOptions holds flags for the shuffle command.
type ShuffleOptions struct {
	*RootOptions
	Seed uint64
}

// NewShuffleCommand creates the shuffle command.
func NewShuffleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShuffleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "shuffle",
		Short: "Randomly reorder the last generated prompts",
		Long: `Shuffle the most recently generated sequence. Shuffle never
regenerates, so edits made since the last generate are not reflected.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShuffle(opts, cmd)
		},
	}

	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "seed for a reproducible order")

	return cmd
}

func runShuffle(opts *ShuffleOptions, cmd *cobra.Command) error {
	var sessOpts session.Options
	if cmd.Flags().Changed("seed") {
		sessOpts.Source = permute.NewSeededSource(opts.Seed)
	}

	rt, err := setup(opts.RootOptions, cmd, sessOpts)
	if err != nil {
		return err
	}
	defer rt.Close()

	seq := rt.sess.Shuffle(rt.ctx)
	if len(seq) == 0 && rt.formatter.Format != "json" {
		fmt.Fprintln(rt.formatter.Writer, "Nothing to shuffle. Run: permute generate")
		return nil
	}
	return printSequence(rt, seq, false)
}

// NewCopyCommand creates the copy command.
func NewCopyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "copy",
		Short:         "Copy the last generated prompts to the clipboard",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(rootOpts, cmd, session.Options{})
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := copySequence(rt); err != nil {
				return err
			}
			n := len(rt.sess.Sequence())
			if rt.formatter.Format == "json" {
				return rt.formatter.Success(map[string]int{"copied": n})
			}
			fmt.Fprintf(rt.formatter.Writer, "✓ Copied %d prompt(s)\n", n)
			return nil
		},
	}
}

func copySequence(rt *runtime) error {
	err := rt.sess.Copy()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, session.ErrNothingToCopy):
		return rt.formatter.Fail(ExitFailure, ErrCodeNothingCopied, "nothing to copy; run generate first", err)
	case errors.Is(err, clipboard.ErrUnavailable):
		return rt.formatter.Fail(ExitFailure, ErrCodeNoClipboard, "no clipboard available", err)
	default:
		return rt.formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "copy failed", err)
	}
}
