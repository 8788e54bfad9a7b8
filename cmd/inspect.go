package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/formtree/internal/config"
	"github.com/zjrosen/formtree/internal/formview"
	"github.com/zjrosen/formtree/internal/layout"
	"github.com/zjrosen/formtree/internal/log"
	"github.com/zjrosen/formtree/internal/registry"
	"github.com/zjrosen/formtree/internal/session"
	"github.com/zjrosen/formtree/internal/tracing"
	"github.com/zjrosen/formtree/internal/watcher"
)

const inspectScreen = "inspect"

var (
	inspectEvents bool
	inspectWatch  bool
	inspectSave   bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [layout]",
	Short: "Apply a layout file and print the resulting form tree",
	Long: `Apply a layout file to a fresh registry session and print the resulting tree.

Forms are registered as roots and elements attach to their parent path once it
exists, regardless of their order in the file. Elements whose parent never
appears are reported as unattached.

Examples:
  # Inspect a layout
  formtree inspect forms.yaml

  # Show registration events as they are published
  formtree inspect forms.yaml --events

  # Re-apply in a new session whenever the file changes
  formtree inspect forms.yaml --watch

  # Remember the layout as the default for later runs
  formtree inspect forms.yaml --save`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVarP(&inspectEvents, "events", "e", false, "print registration events")
	inspectCmd.Flags().BoolVarP(&inspectWatch, "watch", "w", false, "re-apply the layout when the file changes")
	inspectCmd.Flags().BoolVar(&inspectSave, "save", false, "store the layout path as the configured default")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cleanup, err := initLogging(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	path := cfg.Layout
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return errors.New("no layout given: pass a file or set 'layout' in the config")
	}

	if inspectSave {
		configPath := viper.ConfigFileUsed()
		if configPath == "" {
			configPath = defaultConfigPath
		}
		if err := config.SaveLayout(configPath, path); err != nil {
			return fmt.Errorf("saving layout: %w", err)
		}
	}

	provider, err := tracing.NewProvider(cfg.ResolveTracing())
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatConfig, "Tracing shutdown failed", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager := session.NewManager(registry.WithTracer(provider.Tracer()))
	defer manager.CloseAll()

	out := cmd.OutOrStdout()
	opts := inspectOptions{events: inspectEvents}

	if err := inspect(ctx, out, manager, path, opts); err != nil && !inspectWatch {
		return err
	} else if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
	}

	if !inspectWatch {
		return nil
	}
	return watchLayout(ctx, out, manager, path, opts, cfg.WatchDebounce)
}

type inspectOptions struct {
	events bool
}

// inspect opens a new session for the inspect screen, applies the layout at
// path and writes the tree and a summary to out. Any previous session for the
// screen is torn down first.
func inspect(ctx context.Context, out io.Writer, manager *session.Manager, path string, opts inspectOptions) error {
	l, err := layout.Load(path)
	if err != nil {
		return err
	}

	sess, err := manager.Reopen(inspectScreen)
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}
	reg := sess.Registry
	view := formview.New(out)

	fmt.Fprintf(out, "session %s\n", reg.SessionID())
	if opts.events {
		reg.Subscribe(func(ev registry.Event) error {
			_, err := fmt.Fprintln(out, "  "+view.Event(ev))
			return err
		})
	}

	report, err := layout.Apply(ctx, reg, l)
	if err != nil {
		return fmt.Errorf("applying %s: %w", path, err)
	}

	fmt.Fprint(out, view.Tree(reg.Root()))
	fmt.Fprintf(out, "%d forms, %d attached, %d skipped, %d unattached\n",
		report.Forms, len(report.Attached), len(report.Skipped), len(report.Unattached))
	for _, p := range report.Skipped {
		fmt.Fprintf(out, "  skipped %s: name already taken\n", p)
	}
	for _, el := range report.Unattached {
		fmt.Fprintf(out, "  unattached %s: parent %q never registered\n", el.Name, el.Parent)
	}
	return nil
}

func watchLayout(ctx context.Context, out io.Writer, manager *session.Manager, path string, opts inspectOptions, debounce time.Duration) error {
	wcfg := watcher.DefaultConfig(path)
	if debounce > 0 {
		wcfg.DebounceDur = debounce
	}
	w, err := watcher.New(wcfg)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	changes, err := w.Start()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "watching %s (ctrl+c to stop)\n", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			log.Debug(log.CatWatcher, "Layout changed", "path", path)
			fmt.Fprintln(out)
			if err := inspect(ctx, out, manager, path, opts); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		}
	}
}
