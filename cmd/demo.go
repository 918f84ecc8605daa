package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/mj1618/accessbridge/internal/adapter"
	"github.com/mj1618/accessbridge/internal/demo"
	"github.com/mj1618/accessbridge/internal/platform"
	"github.com/mj1618/accessbridge/internal/router"
	"github.com/mj1618/accessbridge/internal/session"
	"github.com/mj1618/accessbridge/internal/toolkit/teabridge"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a terminal checklist app whose accessibility tree is bridged to the OS",
	Long: `Run a small checklist application in the terminal. Its accessibility tree is
offered to the adapter on every update; the native backend is only built once
the activation trigger fires. Press ? to simulate a screen reader asking for
the tree. Notifications raised by the backend are shown under the list.

Examples:
  accessbridge demo
  accessbridge demo --backend mirror --trigger accessibility_query --item milk --item eggs`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().String("title", "Groceries", "Checklist title")
	demoCmd.Flags().StringArray("item", []string{"milk", "eggs", "bread", "coffee"}, "Checklist entry (repeatable)")
	demoCmd.Flags().String("journal", "", "Record adapter lifecycle to this SQLite database (default from config)")
	demoCmd.Flags().String("backend", "", "Backend: native, mirror (default from config)")
	demoCmd.Flags().String("trigger", "", "Activation trigger: window_created, focus_gained, accessibility_query (default: this OS)")
}

func runDemo(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	title, _ := cmd.Flags().GetString("title")
	items, _ := cmd.Flags().GetStringArray("item")

	sessOpts, err := sessionOptions(cmd)
	if err != nil {
		return err
	}

	recorder := &platform.Recorder{}
	notifier := platform.NotifierFunc(func(ctx context.Context, n platform.Notification) {
		platform.LogNotifier{}.Notify(ctx, n)
		recorder.Notify(ctx, n)
	})
	factory, err := session.NewFactory(ctx, sessOpts.Backend, notifier)
	if err != nil {
		return err
	}

	forwarder := &teabridge.ActionForwarder{}
	regOpts := adapter.RegistryOptions{
		Factory: factory,
		Trigger: sessOpts.Trigger,
		Handler: forwarder,
	}

	store, err := openJournal(ctx, cmd)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				err = multierror.Append(err, fmt.Errorf("journal: %w", closeErr))
			}
		}()
		regOpts.Observer = store
	}

	registry := adapter.NewRegistry(regOpts)
	defer func() {
		if closeErr := registry.Close(ctx); closeErr != nil {
			err = multierror.Append(err, closeErr)
		}
	}()
	rt := router.New(registry, sessOpts.Trigger)

	checklist := demo.NewChecklist(ctx, title, items, recorder)
	wrapped := teabridge.Wrap(ctx, checklist, teabridge.Options{Router: rt})

	p := tea.NewProgram(wrapped, tea.WithContext(ctx), tea.WithReportFocus(), tea.WithAltScreen())
	forwardCtx, stopForwarding := context.WithCancel(ctx)
	defer stopForwarding()
	forwarder.Attach(forwardCtx, p)

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	if m, ok := final.(teabridge.Model); ok {
		if err := m.Err(); err != nil {
			logger.Warnf(ctx, "last routing error: %v", err)
		}
		return m.Close(ctx)
	}
	return nil
}
