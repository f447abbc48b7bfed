package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/roach88/permute/internal/prompt"
	"github.com/roach88/permute/internal/session"
)

// EntryView is the JSON shape of one entry.
type EntryView struct {
	Position int      `json:"position"` // 1-based
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Variants []string `json:"variants"`
	Usable   int      `json:"usable"`
}

func viewEntry(index int, e prompt.Entry) EntryView {
	return EntryView{
		Position: index + 1,
		ID:       e.ID,
		Name:     e.Name,
		Variants: e.Variants,
		Usable:   len(prompt.Usable(e.Variants)),
	}
}

// entryResult reports the entry an edit touched.
func entryResult(rt *runtime, verb, id string) error {
	l, ok := rt.sess.Store().Find(id)
	if !ok {
		// Removed entries only report the id.
		if rt.formatter.Format == "json" {
			return rt.formatter.Success(map[string]string{"id": id})
		}
		fmt.Fprintf(rt.formatter.Writer, "✓ %s %s\n", verb, id)
		return nil
	}
	if rt.formatter.Format == "json" {
		return rt.formatter.Success(viewEntry(l.Index, l.Entry))
	}
	name := l.Entry.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(rt.formatter.Writer, "✓ %s %s at position %d: %s [%s]\n",
		verb, l.Entry.ID, l.Index+1, name, strings.Join(l.Entry.Variants, " | "))
	return nil
}

// entryCommand is the shared shape of commands that edit one entry.
func entryCommand(rootOpts *RootOptions, use, short string, args cobra.PositionalArgs, run func(rt *runtime, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          args,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(rootOpts, cmd, session.Options{})
			if err != nil {
				return err
			}
			defer rt.Close()
			return run(rt, args)
		},
	}
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := entryCommand(rootOpts, "add [name] [variants...]", "Append a new variable list",
		cobra.ArbitraryArgs, func(rt *runtime, args []string) error {
			ctx := rt.ctx
			e := rt.sess.AddEntry(ctx)
			if len(args) > 0 {
				rt.sess.RenameEntry(ctx, e.ID, args[0])
			}
			for i, v := range args[min(1, len(args)):] {
				if i == 0 {
					rt.sess.SetVariant(ctx, e.ID, 0, v)
					continue
				}
				rt.sess.AppendVariant(ctx, e.ID, v)
			}
			return entryResult(rt, "Added", e.ID)
		})
	cmd.Long = `Append a new variable list to the end of the collection.

With no arguments the entry starts with an empty name and one empty
variant slot. The first argument sets the name and the rest become its
variants.`
	return cmd
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return entryCommand(rootOpts, "rm <id>", "Delete a variable list",
		cobra.ExactArgs(1), func(rt *runtime, args []string) error {
			id, err := rt.resolve(args[0])
			if err != nil {
				return err
			}
			rt.sess.RemoveEntry(rt.ctx, id)
			return entryResult(rt, "Removed", id)
		})
}

// NewRenameCommand creates the rename command.
func NewRenameCommand(rootOpts *RootOptions) *cobra.Command {
	return entryCommand(rootOpts, "rename <id> <name>", "Rename a variable list",
		cobra.ExactArgs(2), func(rt *runtime, args []string) error {
			id, err := rt.resolve(args[0])
			if err != nil {
				return err
			}
			rt.sess.RenameEntry(rt.ctx, id, args[1])
			return entryResult(rt, "Renamed", id)
		})
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	return entryCommand(rootOpts, "set <id> <position> <text>", "Replace one variant",
		cobra.ExactArgs(3), func(rt *runtime, args []string) error {
			id, err := rt.resolve(args[0])
			if err != nil {
				return err
			}
			index, err := rt.position(args[1])
			if err != nil {
				return err
			}
			if !rt.sess.SetVariant(rt.ctx, id, index, args[2]) {
				return rt.formatter.Fail(ExitFailure, ErrCodeIndexRange,
					fmt.Sprintf("entry %s has no variant %s", id, args[1]), nil)
			}
			return entryResult(rt, "Updated", id)
		})
}

// NewAppendCommand creates the append command.
func NewAppendCommand(rootOpts *RootOptions) *cobra.Command {
	return entryCommand(rootOpts, "append <id> [text...]", "Add variants to a list (an empty slot if none given)",
		cobra.MinimumNArgs(1), func(rt *runtime, args []string) error {
			id, err := rt.resolve(args[0])
			if err != nil {
				return err
			}
			texts := args[1:]
			if len(texts) == 0 {
				texts = []string{""}
			}
			for _, text := range texts {
				rt.sess.AppendVariant(rt.ctx, id, text)
			}
			return entryResult(rt, "Updated", id)
		})
}

// NewUnsetCommand creates the unset command.
func NewUnsetCommand(rootOpts *RootOptions) *cobra.Command {
	return entryCommand(rootOpts, "unset <id> <position>", "Delete one variant",
		cobra.ExactArgs(2), func(rt *runtime, args []string) error {
			id, err := rt.resolve(args[0])
			if err != nil {
				return err
			}
			index, err := rt.position(args[1])
			if err != nil {
				return err
			}
			if !rt.sess.RemoveVariant(rt.ctx, id, index) {
				return rt.formatter.Fail(ExitFailure, ErrCodeIndexRange,
					fmt.Sprintf("entry %s has no variant %s", id, args[1]), nil)
			}
			return entryResult(rt, "Updated", id)
		})
}

// NewMoveCommand creates the move command.
func NewMoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := entryCommand(rootOpts, "move <id> <position>", "Move a variable list to a new position",
		cobra.ExactArgs(2), func(rt *runtime, args []string) error {
			id, err := rt.resolve(args[0])
			if err != nil {
				return err
			}
			target, err := rt.position(args[1])
			if err != nil {
				return err
			}
			rt.sess.MoveEntry(rt.ctx, id, target)
			return entryResult(rt, "Moved", id)
		})
	cmd.Long = `Move a variable list to a 1-based position. Every other list keeps
its relative order. Positions past either end are clamped.`
	return cmd
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return entryCommand(rootOpts, "list", "Show all variable lists",
		cobra.NoArgs, func(rt *runtime, args []string) error {
			entries := rt.sess.Store().Entries()
			views := make([]EntryView, len(entries))
			for i, e := range entries {
				views[i] = viewEntry(i, e)
			}
			if rt.formatter.Format == "json" {
				return rt.formatter.Success(views)
			}
			if len(views) == 0 {
				fmt.Fprintln(rt.formatter.Writer, "No variable lists. Add one with: permute add <name> <variants...>")
				return nil
			}
			n, ok := rt.sess.Count()
			renderEntries(rt, views)
			if ok {
				fmt.Fprintf(rt.formatter.Writer, "\n%d combination(s)\n", n)
			} else {
				fmt.Fprintln(rt.formatter.Writer, "\ncombination count overflows")
			}
			return nil
		})
}

func renderEntries(rt *runtime, views []EntryView) {
	table := newTable([]string{"#", "ID", "Name", "Variants"}, rt.formatter.Writer)
	for _, v := range views {
		shown := make([]string, len(v.Variants))
		for i, text := range v.Variants {
			shown[i] = text
			if prompt.IsBlank(text) {
				shown[i] = `""`
			}
		}
		_ = table.Append([]string{
			fmt.Sprint(v.Position),
			v.ID,
			v.Name,
			strings.Join(shown, " / "),
		})
	}
	_ = table.Render()
}

// newTable creates a table writer with the markdown style used for
// listings.
func newTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}
