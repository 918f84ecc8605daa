package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mj1618/accessbridge/internal/journal"
	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/platform"
	"github.com/mj1618/accessbridge/internal/session"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func stringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		// Handle numeric values that YAML may parse as int/float
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func intParam(params map[string]interface{}, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case int64:
			return int(n)
		case uint64:
			return int(n)
		}
	}
	return defaultVal
}

func boolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// handleParam reads a native handle given as a number or a string such as
// "0x1000".
func handleParam(params map[string]interface{}, key string, required bool) (platform.NativeHandle, error) {
	v, ok := params[key]
	if !ok {
		if required {
			return 0, fmt.Errorf("%s is required", key)
		}
		return 0, nil
	}
	switch h := v.(type) {
	case string:
		return platform.ParseHandle(h)
	case int, int64, uint64, float64:
		n := intParam(params, key, 0)
		if n <= 0 {
			return 0, fmt.Errorf("invalid native handle %v: must be positive", v)
		}
		return platform.NativeHandle(n), nil
	default:
		return 0, fmt.Errorf("invalid native handle %v", v)
	}
}

// treeParam decodes a tree update given inline as a YAML map.
func treeParam(params map[string]interface{}, key string) (model.TreeUpdate, error) {
	v, ok := params[key]
	if !ok {
		return model.TreeUpdate{}, fmt.Errorf("%s is required", key)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return model.TreeUpdate{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parseTree(data)
}

// parseTree decodes a YAML (or JSON) tree update.
func parseTree(data []byte) (model.TreeUpdate, error) {
	var update model.TreeUpdate
	if err := yaml.Unmarshal(data, &update); err != nil {
		return model.TreeUpdate{}, fmt.Errorf("invalid tree update: %w", err)
	}
	if err := update.Validate(); err != nil {
		return model.TreeUpdate{}, err
	}
	return update, nil
}

// actionParam builds an action request. The target is given by node id
// ("target") or resolved later by text ("text", "roles", "exact").
func actionParam(params map[string]interface{}) (model.ActionRequest, error) {
	action, err := model.ParseAction(stringParam(params, "action", string(model.ActionClick)))
	if err != nil {
		return model.ActionRequest{}, err
	}
	req := model.ActionRequest{
		Action: action,
		Target: model.NodeID(intParam(params, "target", 0)),
	}
	if value, ok := params["value"]; ok {
		req.Data = &model.ActionData{Value: fmt.Sprintf("%v", value)}
	}
	return req, nil
}

// sessionOptions builds session options from the config and the command's
// --backend/--trigger flags.
func sessionOptions(cmd *cobra.Command) (session.Options, error) {
	backend := cfg.Backend.Kind
	if f := cmd.Flags().Lookup("backend"); f != nil && f.Changed {
		backend = f.Value.String()
	}
	trigger := cfg.Backend.Trigger
	if f := cmd.Flags().Lookup("trigger"); f != nil && f.Changed {
		trigger = f.Value.String()
	}
	opts := session.Options{Backend: backend}
	if trigger != "" {
		t, err := platform.ParseTrigger(trigger)
		if err != nil {
			return session.Options{}, err
		}
		opts.Trigger = t
	}
	return opts, nil
}

// openJournal opens the journal named by --journal or the config. It
// returns nil when journaling is off.
func openJournal(ctx context.Context, cmd *cobra.Command) (*journal.Store, error) {
	path := cfg.Journal.Path
	if f := cmd.Flags().Lookup("journal"); f != nil && f.Changed {
		path = f.Value.String()
	}
	if path == "" {
		return nil, nil
	}
	return journal.Open(ctx, path, journal.Options{
		BufferSize:    cfg.Journal.BufferSize,
		FlushInterval: cfg.Journal.FlushInterval(),
	})
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
