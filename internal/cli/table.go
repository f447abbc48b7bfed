package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/permute/internal/session"
	"github.com/roach88/permute/internal/tabular"
)

func parseLayoutFlag(rt *runtime, value string) (tabular.Layout, error) {
	layout, err := tabular.ParseLayout(value)
	if err != nil {
		return 0, rt.formatter.Fail(ExitCommandError, ErrCodeLayout, fmt.Sprintf("unknown layout %q", value), err)
	}
	return layout, nil
}

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Layout string
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace all variable lists with a CSV table",
		Long: `Replace the whole collection with the contents of a CSV file.

With the default columns layout the first row holds the names and each
column lists one variable's variants downward. The rows layout reads one
variable per line, name first, which is what export writes by default.
Use - to read from stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Layout, "layout", tabular.Columns.String(), "table layout: rows or columns")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	rt, err := setup(opts.RootOptions, cmd, session.Options{})
	if err != nil {
		return err
	}
	defer rt.Close()

	layout, err := parseLayoutFlag(rt, opts.Layout)
	if err != nil {
		return err
	}

	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return rt.formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("file not found: %s", path), err)
			}
			return rt.formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to open file", err)
		}
		defer f.Close()
		r = f
	}

	if err := rt.sess.Import(rt.ctx, r, layout); err != nil {
		return rt.formatter.Fail(ExitCommandError, ErrCodeGeneric, "import failed", err)
	}

	n := rt.sess.Store().Len()
	rt.formatter.VerboseLog("Imported %s with %s layout", path, layout)
	if rt.formatter.Format == "json" {
		return rt.formatter.Success(map[string]interface{}{
			"entries": n,
			"layout":  layout.String(),
		})
	}
	fmt.Fprintf(rt.formatter.Writer, "✓ Imported %d variable list(s)\n", n)
	return nil
}

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Layout string
	Stdout bool
}

// ExportResult describes a written export file.
type ExportResult struct {
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Bytes       int    `json:"bytes"`
	Layout      string `json:"layout"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export [dir]",
		Short: "Write all variable lists as a CSV file",
		Long: `Write the collection to a CSV file named by export_name (default
prompts.csv) in dir, or the current directory.

The default rows layout writes one line per variable, name first. Fields
are never quoted, so commas inside names or variants are ambiguous when
read back.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runExport(opts, dir, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Layout, "layout", tabular.Rows.String(), "table layout: rows or columns")
	cmd.Flags().BoolVar(&opts.Stdout, "stdout", false, "write the table to stdout instead of a file")

	return cmd
}

func runExport(opts *ExportOptions, dir string, cmd *cobra.Command) error {
	rt, err := setup(opts.RootOptions, cmd, session.Options{})
	if err != nil {
		return err
	}
	defer rt.Close()

	layout, err := parseLayoutFlag(rt, opts.Layout)
	if err != nil {
		return err
	}

	if opts.Stdout {
		if err := rt.sess.Export(rt.formatter.Writer, layout); err != nil {
			return rt.formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "export failed", err)
		}
		return nil
	}

	var buf bytes.Buffer
	if err := rt.sess.Export(&buf, layout); err != nil {
		return rt.formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "export failed", err)
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return rt.formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("directory not found: %s", dir), err)
	}
	path := filepath.Join(dir, rt.cfg.ExportName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return rt.formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write file", err)
	}

	result := ExportResult{
		Path:        path,
		ContentType: tabular.ContentType,
		Bytes:       buf.Len(),
		Layout:      layout.String(),
	}
	if rt.formatter.Format == "json" {
		return rt.formatter.Success(result)
	}
	fmt.Fprintf(rt.formatter.Writer, "✓ Exported %s (%s, %d bytes)\n", result.Path, result.ContentType, result.Bytes)
	return nil
}

// NewKeysCommand creates the keys command.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "keys",
		Short:         "List saved prompt collections, most recent first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(rootOpts, cmd, session.Options{})
			if err != nil {
				return err
			}
			defer rt.Close()

			keys, err := rt.db.Keys(rt.ctx)
			if err != nil {
				return rt.formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to list keys", err)
			}
			if rt.formatter.Format == "json" {
				if keys == nil {
					keys = []string{}
				}
				return rt.formatter.Success(keys)
			}
			for _, k := range keys {
				marker := " "
				if k == rt.cfg.Key {
					marker = "*"
				}
				fmt.Fprintf(rt.formatter.Writer, "%s %s\n", marker, k)
			}
			return nil
		},
	}
}
