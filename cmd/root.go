package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mj1618/accessbridge/internal/config"
	"github.com/mj1618/accessbridge/internal/logging"
	"github.com/mj1618/accessbridge/internal/output"
	"github.com/spf13/cobra"

	// Backend registrations, one per OS family.
	_ "github.com/mj1618/accessbridge/internal/platform/darwin"
	_ "github.com/mj1618/accessbridge/internal/platform/unix"
	_ "github.com/mj1618/accessbridge/internal/platform/windows"
)

// Version is overridden at link time.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "accessbridge",
	Short: "Expose application accessibility trees to the OS accessibility service",
	Long: `accessbridge connects an application's platform-neutral accessibility tree to
the native accessibility service of the OS (NSAccessibility, UI Automation,
AT-SPI). Windows are activated lazily: no native accessibility object exists
until the OS asks for one.`,
	SilenceUsage:      true,
	PersistentPreRunE: persistentPreRun,
	PersistentPostRun: persistentPostRun,
}

var (
	configPath string
	logLevel   = logger.LevelUndefined

	// cfg is the loaded configuration, available to every RunE.
	cfg       = config.Default()
	logCloser io.Closer
)

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().String("format", "", "Output format: yaml, json (default from config, else yaml)")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/accessbridge/config.yaml)")
	rootCmd.PersistentFlags().Var(&logLevel, "log-level", "Log level: trace, debug, info, warning, error")
}

func persistentPreRun(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Use the root persistent flags directly so subcommand flags cannot
	// shadow them.
	flags := cmd.Root().PersistentFlags()
	if flags.Changed("format") {
		loaded.Output.Format, _ = flags.GetString("format")
	}
	if flags.Changed("pretty") {
		loaded.Output.Pretty, _ = flags.GetBool("pretty")
	}
	if flags.Changed("log-level") {
		loaded.Logging.Level = logLevel.String()
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	format, err := output.ParseFormat(loaded.Output.Format)
	if err != nil {
		return err
	}
	output.OutputFormat = format
	output.PrettyOutput = loaded.Output.Pretty

	l, closer, err := logging.New(loaded.Logging)
	if err != nil {
		return err
	}
	logCloser = closer
	cmd.SetContext(logging.CtxWithLogger(cmd.Context(), l))
	cfg = loaded
	logger.Debugf(cmd.Context(), "config loaded: format=%s backend=%s", loaded.Output.Format, loaded.Backend.Kind)
	return nil
}

func persistentPostRun(cmd *cobra.Command, args []string) {
	if logCloser != nil {
		if err := logCloser.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "failed to close log file: %v\n", err)
		}
		logCloser = nil
	}
}
