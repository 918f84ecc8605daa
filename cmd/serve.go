package cmd

import (
	"fmt"
	"io"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mj1618/accessbridge/internal/config"
	"github.com/mj1618/accessbridge/internal/logging"
	"github.com/mj1618/accessbridge/internal/server"
	"github.com/mj1618/accessbridge/internal/session"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server that drives window adapters",
	Long: `Start a Model Context Protocol (MCP) server. An agent plays both sides of the
bridge: the windowing toolkit (create_window, update_tree, window_event,
destroy_window) and the assistive technology (read_tree, perform_action).
Action requests that reach the application are queued for the actions tool.

Supported transports:
  stdio   Standard I/O (default, for MCP clients)
  http    Streamable HTTP transport (for remote agents)

With --watch, changes to the log settings in the config file apply without
a restart.

Examples:
  accessbridge serve
  accessbridge serve --transport http --addr 127.0.0.1:8765
  accessbridge serve --backend mirror --trigger accessibility_query`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "", "Transport: stdio, http (default from config)")
	serveCmd.Flags().String("addr", "", "Listen address for the http transport (default from config)")
	serveCmd.Flags().String("journal", "", "Record adapter lifecycle to this SQLite database (default from config)")
	serveCmd.Flags().String("backend", "", "Backend: native, mirror (default from config)")
	serveCmd.Flags().String("trigger", "", "Activation trigger: window_created, focus_gained, accessibility_query (default: this OS)")
	serveCmd.Flags().Int("cache-ttl", 500, "Tree cache TTL for read_tree in milliseconds (0 to disable)")
	serveCmd.Flags().Bool("watch", false, "Reload log settings when the config file changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	serveCfg := server.Config{
		Transport: cfg.Serve.Transport,
		Addr:      cfg.Serve.Addr,
	}
	if cmd.Flags().Changed("transport") {
		serveCfg.Transport, _ = cmd.Flags().GetString("transport")
	}
	if cmd.Flags().Changed("addr") {
		serveCfg.Addr, _ = cmd.Flags().GetString("addr")
	}
	cacheTTL, _ := cmd.Flags().GetInt("cache-ttl")
	watch, _ := cmd.Flags().GetBool("watch")

	sessOpts, err := sessionOptions(cmd)
	if err != nil {
		return err
	}
	sessOpts.TreeCacheTTL = millis(cacheTTL)

	store, err := openJournal(ctx, cmd)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logger.Errorf(ctx, "unable to close the journal: %v", err)
			}
		}()
		sessOpts.Observer = store
	}

	sess, err := session.New(ctx, sessOpts)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer func() {
		if err := sess.Close(ctx); err != nil {
			logger.Errorf(ctx, "unable to close all windows: %v", err)
		}
	}()

	srv := server.New(sess, Version)

	if watch {
		path := configPath
		if path == "" {
			path = config.File()
		}
		// Owned by the watch goroutine.
		var reloadCloser io.Closer
		err := config.Watch(ctx, path, func(reloaded *config.Config, err error) {
			if err != nil {
				logger.Warnf(ctx, "ignoring config change: %v", err)
				return
			}
			l, closer, err := logging.New(reloaded.Logging)
			if err != nil {
				logger.Warnf(ctx, "ignoring logging change: %v", err)
				return
			}
			srv.SetLogger(ctx, l)
			if reloadCloser != nil {
				reloadCloser.Close()
			}
			reloadCloser = closer
			logger.Infof(ctx, "log level is now %s", reloaded.Logging.Level)
		})
		if err != nil {
			return err
		}
	}

	return srv.Serve(ctx, serveCfg)
}
