// Command treeselect picks values from a tree of options in the terminal.
//
//	treeselect [flags] [options-file...]
//
// Option files are JSON, YAML or SQLite. With no arguments the files listed
// or discovered through the config's sources section are used. The chosen
// values are printed to stdout, one per line, so the command composes with
// shell substitution; the menu itself is drawn on stderr.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/treeselect/pkg/config"
	"github.com/vanderheijden86/treeselect/pkg/debug"
	"github.com/vanderheijden86/treeselect/pkg/loader"
	"github.com/vanderheijden86/treeselect/pkg/model"
	"github.com/vanderheijden86/treeselect/pkg/options"
	"github.com/vanderheijden86/treeselect/pkg/selector"
	"github.com/vanderheijden86/treeselect/pkg/ui"
	"github.com/vanderheijden86/treeselect/pkg/watcher"
)

// errAborted signals ctrl+c; it exits 130 without a message.
var errAborted = errors.New("aborted")

var copyToClipboard = clipboard.WriteAll

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, errAborted):
		os.Exit(130)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	multiple    bool
	searchable  bool
	disabled    bool
	fuzzy       bool
	configPath  string
	sqliteTable string
	watch       bool
	print       bool
	copy        bool
}

func newRootCmd() *cobra.Command {
	var o rootOptions

	cmd := &cobra.Command{
		Use:           "treeselect [flags] [options-file...]",
		Short:         "Pick values from a tree of options",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, args)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&o.multiple, "multiple", "m", false, "Allow selecting several values")
	f.BoolVarP(&o.searchable, "searchable", "s", false, "Filter options by typing")
	f.BoolVar(&o.disabled, "disabled", false, "Show the select without accepting input")
	f.BoolVar(&o.fuzzy, "fuzzy", false, "Use fuzzy instead of substring matching")
	f.StringVarP(&o.configPath, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/treeselect/config.yaml)")
	f.StringVar(&o.sqliteTable, "sqlite-table", "", "Table to read from SQLite sources (default \"options\")")
	f.BoolVarP(&o.watch, "watch", "w", false, "Reload the options file when it changes")
	f.BoolVarP(&o.print, "print", "p", false, "Print the option outline instead of opening the menu")
	f.BoolVar(&o.copy, "copy", false, "Also copy the selection to the clipboard")

	return cmd
}

func run(cmd *cobra.Command, o rootOptions, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)
	debug.Dump("config", cfg)

	paths := args
	if len(paths) == 0 {
		paths = config.DiscoverSources(cfg)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no options file given and none found via config sources")
	}

	opts, err := loadOptions(ctx, paths, o.sqliteTable)
	if err != nil {
		return err
	}
	debug.Log("main: loaded %d root options from %d sources", len(opts), len(paths))

	out := cmd.OutOrStdout()
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
	if o.print || !interactive {
		return writeOutline(out, opts)
	}

	value, err := runTUI(ctx, cfg, o, paths, opts)
	if err != nil {
		return err
	}

	text := ui.ValueText(value)
	if text == "" {
		return nil
	}
	fmt.Fprintln(out, text)
	if o.copy {
		if err := copyToClipboard(text); err != nil {
			log.Printf("warning: could not copy to clipboard: %v", err)
		}
	}
	return nil
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// applyFlags lets explicitly set flags override the config file.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	set := func(name string, dst *bool) {
		if flags.Changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}
	set("multiple", &cfg.Select.Multiple)
	set("searchable", &cfg.Select.Searchable)
	set("disabled", &cfg.Select.Disabled)

	var fuzzy bool
	set("fuzzy", &fuzzy)
	if flags.Changed("fuzzy") {
		cfg.Select.MatchMode = "substring"
		if fuzzy {
			cfg.Select.MatchMode = "fuzzy"
		}
	}
}

// loadOptions reads every source. table applies to SQLite sources only.
func loadOptions(ctx context.Context, paths []string, table string) ([]model.Option, error) {
	if table == "" {
		table = loader.DefaultTable
	}
	return loader.LoadAllFromTable(ctx, paths, table)
}

func runTUI(ctx context.Context, cfg config.Config, o rootOptions, paths []string, opts []model.Option) (model.ModelValue, error) {
	keys, err := cfg.KeyMap()
	if err != nil {
		return model.ModelValue{}, err
	}

	// The program owns the terminal; route log output away from it.
	if debug.Enabled() {
		f, err := tea.LogToFile(filepath.Join(os.TempDir(), "treeselect-debug.log"), "treeselect")
		if err == nil {
			defer f.Close()
			debug.SetOutput(f)
		}
	} else {
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)
	}

	sel := selector.New(selector.Props{
		Options:    opts,
		Multiple:   cfg.Select.Multiple,
		Searchable: cfg.Select.Searchable,
		Disabled:   cfg.Select.Disabled,
		MatchMode:  options.ParseMatchMode(cfg.Select.MatchMode),
		PageStep:   cfg.Select.PageStep,
	})

	mcfg := ui.SelectModelConfig{
		Keys:               keys,
		Placeholder:        cfg.UI.Placeholder,
		CreatorPlaceholder: cfg.UI.CreatorPlaceholder,
		MaxHeight:          cfg.UI.MaxHeight,
		QuitOnSelect:       !cfg.Select.Multiple,
	}
	if cfg.UI.PersistCollapse {
		mcfg.StatePath = ui.CollapseStatePath(config.StateDir())
		mcfg.StateKey = sourceKey(paths)
	}

	if o.watch {
		if len(paths) != 1 {
			return model.ModelValue{}, fmt.Errorf("--watch needs exactly one options file, got %d", len(paths))
		}
		w, err := watcher.New(paths[0])
		if err != nil {
			return model.ModelValue{}, fmt.Errorf("watching %s: %w", paths[0], err)
		}
		if err := w.Start(ctx); err != nil {
			return model.ModelValue{}, fmt.Errorf("watching %s: %w", paths[0], err)
		}
		defer w.Stop()
		debug.Log("watching %s (polling=%v)", paths[0], w.Polling())
		mcfg.Watch = ui.WatchOptionsCmd(w, func() ([]model.Option, error) {
			return loadOptions(ctx, paths, o.sqliteTable)
		})
	}

	m := ui.NewSelectModel(sel, mcfg)
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return model.ModelValue{}, fmt.Errorf("running select: %w", err)
	}
	if m.Aborted() {
		return model.ModelValue{}, errAborted
	}
	return m.Value(), nil
}

// sourceKey names a set of sources in the collapse state file.
func sourceKey(paths []string) string {
	keys := make([]string, len(paths))
	for i, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		keys[i] = p
	}
	return strings.Join(keys, string(os.PathListSeparator))
}

// writeOutline prints the fully expanded tree, two spaces per level.
func writeOutline(w io.Writer, opts []model.Option) error {
	rows := options.NewEngine(opts, options.Config{}).VisibleOptions()
	for _, row := range rows {
		line := strings.Repeat("  ", row.Depth) + outlineLabel(row)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func outlineLabel(row model.FlatOption) string {
	if row.Value.IsNone() {
		return row.Label + ":"
	}
	label := row.Label
	if v := row.Value.String(); v != label {
		label += " [" + v + "]"
	}
	if row.Disabled {
		label += " (disabled)"
	}
	return label
}
