package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/mj1618/accessbridge/internal/adapter"
	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/output"
	"github.com/mj1618/accessbridge/internal/platform"
	"github.com/mj1618/accessbridge/internal/router"
	"github.com/mj1618/accessbridge/internal/session"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a scripted sequence of toolkit events through the adapters",
	Long: `Replay a sequence of windowing toolkit events from a YAML list (stdin or
--file) and report what every window adapter did.

Each step is a step name with its parameters as a map. Steps execute
sequentially against one registry.

Supported step types:
  create   { window, handle }       window created (handle optional)
  handle   { window, handle }       native handle became available
  update   { window, tree }         application offers a tree snapshot
  event    { window, kind }         window event (focus_gained, accessibility_query, ...)
  action   { window, action, target | text, roles, exact, value }
                                    assistive technology requests an action
  destroy  { window }               window destroyed
  state    { window }               report adapter state (all windows when omitted)
  tree     { window }               report the nodes exposed by the backend

Example:
  accessbridge replay <<'EOF'
  - create: { window: 1, handle: 0x1000 }
  - update: { window: 1, tree: { root: 1, nodes: [ { i: 1, r: window, t: Demo, c: [2] }, { i: 2, r: btn, t: OK, a: [click] } ] } }
  - event: { window: 1, kind: accessibility_query }
  - action: { window: 1, action: click, target: 2 }
  - destroy: { window: 1 }
  EOF`,
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().String("file", "", "Read steps from this file instead of stdin")
	replayCmd.Flags().Int("window", 1, "Default window id for steps that do not name one")
	replayCmd.Flags().Bool("stop-on-error", false, "Stop execution on first error (default from config)")
	replayCmd.Flags().String("journal", "", "Record adapter lifecycle to this SQLite database (default from config)")
	replayCmd.Flags().String("backend", "", "Backend: native, mirror (default from config)")
	replayCmd.Flags().String("trigger", "", "Activation trigger: window_created, focus_gained, accessibility_query (default: this OS)")
}

// replayStep is one parsed step: a single step name and its parameters.
type replayStep struct {
	op     string
	params map[string]interface{}
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	file, _ := cmd.Flags().GetString("file")
	defaultWindow, _ := cmd.Flags().GetInt("window")
	stopOnError := cfg.Replay.StopOnError
	if cmd.Flags().Changed("stop-on-error") {
		stopOnError, _ = cmd.Flags().GetBool("stop-on-error")
	}

	var in io.Reader = cmd.InOrStdin()
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open steps file: %w", err)
		}
		defer f.Close()
		in = f
	}
	steps, err := readSteps(in)
	if err != nil {
		return err
	}

	sessOpts, err := sessionOptions(cmd)
	if err != nil {
		return err
	}
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
		return err
	}

	result, runErr := replay(ctx, sess, steps, adapter.WindowID(defaultWindow), stopOnError)
	result.Windows = sess.Windows(ctx)
	if err := sess.Close(ctx); err != nil {
		runErr = multierror.Append(runErr, fmt.Errorf("close: %w", err))
	}
	if err := output.Print(result); err != nil {
		return err
	}
	if runErr != nil {
		logger.Debugf(ctx, "replay finished with errors: %v", runErr)
		return fmt.Errorf("%d of %d steps failed", result.Failed, len(steps))
	}
	return nil
}

// readSteps parses a YAML list of single-key maps.
func readSteps(in io.Reader) ([]replayStep, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read steps: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no steps provided; pipe a YAML list of steps or use --file")
	}

	var rawSteps []map[string]map[string]interface{}
	if err := yaml.Unmarshal(data, &rawSteps); err != nil {
		return nil, fmt.Errorf("failed to parse YAML steps: %w", err)
	}
	if len(rawSteps) == 0 {
		return nil, fmt.Errorf("no steps provided; expected a YAML list of steps")
	}

	steps := make([]replayStep, 0, len(rawSteps))
	for i, step := range rawSteps {
		if len(step) != 1 {
			return nil, fmt.Errorf("step %d: expected exactly one step name, got %d", i+1, len(step))
		}
		for op, params := range step {
			if params == nil {
				params = map[string]interface{}{}
			}
			steps = append(steps, replayStep{op: op, params: params})
		}
	}
	return steps, nil
}

// replay runs every step and returns the collected outcome. The returned
// error aggregates every failed step.
func replay(
	ctx context.Context,
	sess *session.Session,
	steps []replayStep,
	defaultWindow adapter.WindowID,
	stopOnError bool,
) (output.ReplayResult, error) {
	result := output.ReplayResult{
		TS:    time.Now().Unix(),
		Steps: make([]output.StepResult, 0, len(steps)),
	}
	var errs *multierror.Error
	for i, step := range steps {
		window := adapter.WindowID(intParam(step.params, "window", int(defaultWindow)))
		sr, err := executeReplayStep(ctx, sess, step, window)
		sr.Step = i + 1
		sr.Op = step.op
		sr.Notifications = sess.Notifications(ctx)
		if err != nil {
			sr.Error = err.Error()
			result.Failed++
			errs = multierror.Append(errs, fmt.Errorf("step %d (%s): %w", i+1, step.op, err))
		}
		result.Steps = append(result.Steps, sr)
		if err != nil && stopOnError {
			break
		}
	}
	result.OK = result.Failed == 0
	return result, errs.ErrorOrNil()
}

func executeReplayStep(ctx context.Context, sess *session.Session, step replayStep, window adapter.WindowID) (output.StepResult, error) {
	sr := output.StepResult{Window: uint64(window)}
	var err error

	switch step.op {
	case "create":
		var handle platform.NativeHandle
		if handle, err = handleParam(step.params, "handle", false); err == nil {
			err = sess.Create(ctx, window, handle)
		}
	case "handle":
		var handle platform.NativeHandle
		if handle, err = handleParam(step.params, "handle", true); err == nil {
			err = sess.SetHandle(ctx, window, handle)
		}
	case "update":
		var update model.TreeUpdate
		if update, err = treeParam(step.params, "tree"); err == nil {
			err = sess.Update(ctx, window, update)
		}
	case "event":
		var kind router.Kind
		if kind, err = router.ParseKind(stringParam(step.params, "kind", "")); err == nil {
			sr.Forwarded, err = sess.Event(ctx, window, kind)
		}
	case "action":
		var req model.ActionRequest
		if req, err = actionParam(step.params); err == nil {
			text := stringParam(step.params, "text", "")
			roles := stringParam(step.params, "roles", "")
			exact := boolParam(step.params, "exact", false)
			if err = sess.ResolveTarget(ctx, window, &req, text, roles, exact); err == nil {
				err = sess.PerformAction(ctx, window, req)
			}
		}
	case "destroy":
		err = sess.Destroy(ctx, window)
	case "state":
		if _, named := step.params["window"]; !named {
			sr.Window = 0
			var states []string
			for _, w := range sess.Windows(ctx) {
				states = append(states, fmt.Sprintf("%d=%s", w.ID, w.State))
			}
			sr.State = strings.Join(states, " ")
			return sr, nil
		}
		info, err := sess.Window(ctx, window)
		sr.State = info.State
		return sr, err
	case "tree":
		sr.Tree, err = sess.Tree(ctx, window)
	default:
		return sr, fmt.Errorf("unknown step type %q; supported: create, handle, update, event, action, destroy, state, tree", step.op)
	}

	if info, lookupErr := sess.Window(ctx, window); lookupErr == nil {
		sr.State = info.State
	} else if step.op == "destroy" && err == nil {
		sr.State = string(adapter.StateDestroyed)
	}
	return sr, err
}
