package cmd

import (
	"runtime"

	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/output"
	"github.com/mj1618/accessbridge/internal/platform"
	"github.com/spf13/cobra"
)

var platformCmd = &cobra.Command{
	Use:   "platform",
	Short: "Show the compiled-in accessibility backend and activation trigger",
	Long: `Show which accessibility backend this binary was built with, the signal that
activates it, and whether the OS accessibility service is reachable right now.`,
	Args: cobra.NoArgs,
	RunE: runPlatform,
}

func init() {
	rootCmd.AddCommand(platformCmd)
}

// minimalTree is the smallest tree a backend accepts.
var minimalTree = model.TreeUpdate{Root: 1, Nodes: []model.Node{{ID: 1, Role: "window"}}}

func runPlatform(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	info := output.PlatformInfo{
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		Trigger: string(platform.ActivationTrigger),
		Eager:   platform.ActivationTrigger.Eager(),
	}

	factory, err := platform.NewFactory(platform.LogNotifier{})
	if err == nil {
		var backend platform.Backend
		backend, err = factory.NewBackend(ctx, 1, minimalTree, nil)
		if err == nil {
			err = backend.Shutdown(ctx)
		}
	}
	if err != nil {
		info.Error = err.Error()
	} else {
		info.Available = true
	}
	return output.Print(info)
}
