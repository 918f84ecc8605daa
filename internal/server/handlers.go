package server

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/accessbridge/internal/adapter"
	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/output"
	"github.com/mj1618/accessbridge/internal/platform"
	"github.com/mj1618/accessbridge/internal/router"
	"github.com/xaionaro-go/xsync"
	"gopkg.in/yaml.v3"
)

// toolResult is the body of every tool response.
type toolResult struct {
	OK            bool                    `yaml:"ok"                      json:"ok"`
	Tool          string                  `yaml:"tool"                    json:"tool"`
	Error         string                  `yaml:"error,omitempty"         json:"error,omitempty"`
	Window        *output.WindowInfo      `yaml:"window,omitempty"        json:"window,omitempty"`
	Forwarded     *bool                   `yaml:"forwarded,omitempty"     json:"forwarded,omitempty"`
	Windows       []output.WindowInfo     `yaml:"windows,omitempty"       json:"windows,omitempty"`
	Tree          []model.FlatNode        `yaml:"tree,omitempty"          json:"tree,omitempty"`
	Snapshot      *model.TreeUpdate       `yaml:"snapshot,omitempty"      json:"snapshot,omitempty"`
	Actions       []output.ActionInfo     `yaml:"actions,omitempty"       json:"actions,omitempty"`
	Notifications []platform.Notification `yaml:"notifications,omitempty" json:"notifications,omitempty"`
}

func (s *Server) registerTools() {
	window := mcp.WithNumber("window", mcp.Required(), mcp.Description("Toolkit window id"))

	s.mcp.AddTool(
		mcp.NewTool("windows",
			mcp.WithDescription("List tracked windows with their adapter state"),
		),
		s.handleWindows,
	)

	s.mcp.AddTool(
		mcp.NewTool("create_window",
			mcp.WithDescription("Report a new toolkit window. The native handle may be given now or later with set_handle."),
			window,
			mcp.WithString("handle", mcp.Description("Native window handle, decimal or 0x-prefixed hex")),
		),
		s.handleCreateWindow,
	)

	s.mcp.AddTool(
		mcp.NewTool("set_handle",
			mcp.WithDescription("Report the native handle of a window created without one"),
			window,
			mcp.WithString("handle", mcp.Required(), mcp.Description("Native window handle, decimal or 0x-prefixed hex")),
		),
		s.handleSetHandle,
	)

	s.mcp.AddTool(
		mcp.NewTool("update_tree",
			mcp.WithDescription("Offer a new accessibility tree snapshot for a window. Buffered until the backend is activated."),
			window,
			mcp.WithString("tree", mcp.Required(), mcp.Description("Tree update as YAML or JSON: {root, focus, nodes: [{i, r, t, v, c, a}]}")),
		),
		s.handleUpdateTree,
	)

	kinds := make([]string, 0, len(router.Kinds))
	for _, k := range router.Kinds {
		if k != router.KindActionRequest {
			kinds = append(kinds, string(k))
		}
	}
	s.mcp.AddTool(
		mcp.NewTool("window_event",
			mcp.WithDescription("Route a windowing toolkit event (focus, minimize, accessibility query, ...) to a window's adapter"),
			window,
			mcp.WithString("kind", mcp.Required(), mcp.Enum(kinds...), mcp.Description("Event kind")),
		),
		s.handleWindowEvent,
	)

	s.mcp.AddTool(
		mcp.NewTool("perform_action",
			mcp.WithDescription("Act as assistive technology: ask a window's backend to perform an action on a node"),
			window,
			mcp.WithString("action", mcp.Description("Action name (default click)")),
			mcp.WithNumber("target", mcp.Description("Target node id")),
			mcp.WithString("text", mcp.Description("Pick the target node by text instead of id")),
			mcp.WithString("roles", mcp.Description("Comma-separated role filter for text")),
			mcp.WithBoolean("exact", mcp.Description("Require exact text match")),
			mcp.WithString("value", mcp.Description("Value for set_value and replace_selected_text")),
		),
		s.handlePerformAction,
	)

	s.mcp.AddTool(
		mcp.NewTool("read_tree",
			mcp.WithDescription("Read the nodes a window's backend exposes to assistive technology"),
			window,
			mcp.WithBoolean("full", mcp.Description("Return the mirrored tree as a full tree update, hidden nodes included")),
		),
		s.handleReadTree,
	)

	s.mcp.AddTool(
		mcp.NewTool("destroy_window",
			mcp.WithDescription("Report that a window is gone; its backend is shut down"),
			window,
		),
		s.handleDestroyWindow,
	)

	s.mcp.AddTool(
		mcp.NewTool("actions",
			mcp.WithDescription("Drain the action requests the application received since the last call"),
		),
		s.handleActions,
	)
}

// call runs fn with tool calls serialized and wraps the outcome, including
// the notifications fn raised, into a tool result.
func (s *Server) call(ctx context.Context, tool string, fn func(ctx context.Context, r *toolResult) error) (*mcp.CallToolResult, error) {
	r := xsync.DoR1(ctx, &s.opLocker, func() toolResult {
		callCtx := ctx
		if s.log != nil {
			callCtx = logger.CtxWithLogger(ctx, s.log)
		}
		logger.Debugf(callCtx, "tool %s", tool)
		r := toolResult{Tool: tool}
		if err := fn(callCtx, &r); err != nil {
			r.Error = err.Error()
		}
		r.Notifications = s.sess.Notifications(callCtx)
		return r
	})
	r.OK = r.Error == ""

	text, err := output.Marshal(r)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ok: false\nerror: %s", err)), nil
	}
	if !r.OK {
		return mcp.NewToolResultError(text), nil
	}
	return mcp.NewToolResultText(text), nil
}

// describe fills in the state of window, ignoring windows that are gone.
func (s *Server) describe(ctx context.Context, r *toolResult, window adapter.WindowID) {
	if info, err := s.sess.Window(ctx, window); err == nil {
		r.Window = &info
	}
}

func windowParam(request mcp.CallToolRequest) (adapter.WindowID, error) {
	id := request.GetInt("window", 0)
	if id <= 0 {
		return 0, fmt.Errorf("window must be a positive id")
	}
	return adapter.WindowID(id), nil
}

func (s *Server) handleWindows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.call(ctx, "windows", func(ctx context.Context, r *toolResult) error {
		r.Windows = s.sess.Windows(ctx)
		return nil
	})
}

func (s *Server) handleCreateWindow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.call(ctx, "create_window", func(ctx context.Context, r *toolResult) error {
		window, err := windowParam(request)
		if err != nil {
			return err
		}
		var handle platform.NativeHandle
		if h := request.GetString("handle", ""); h != "" {
			if handle, err = platform.ParseHandle(h); err != nil {
				return err
			}
		}
		defer s.describe(ctx, r, window)
		return s.sess.Create(ctx, window, handle)
	})
}

func (s *Server) handleSetHandle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.call(ctx, "set_handle", func(ctx context.Context, r *toolResult) error {
		window, err := windowParam(request)
		if err != nil {
			return err
		}
		handle, err := platform.ParseHandle(request.GetString("handle", ""))
		if err != nil {
			return err
		}
		defer s.describe(ctx, r, window)
		return s.sess.SetHandle(ctx, window, handle)
	})
}

func (s *Server) handleUpdateTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.call(ctx, "update_tree", func(ctx context.Context, r *toolResult) error {
		window, err := windowParam(request)
		if err != nil {
			return err
		}
		var update model.TreeUpdate
		if err := yaml.Unmarshal([]byte(request.GetString("tree", "")), &update); err != nil {
			return fmt.Errorf("invalid tree update: %w", err)
		}
		defer s.describe(ctx, r, window)
		return s.sess.Update(ctx, window, update)
	})
}

func (s *Server) handleWindowEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.call(ctx, "window_event", func(ctx context.Context, r *toolResult) error {
		window, err := windowParam(request)
		if err != nil {
			return err
		}
		kind, err := router.ParseKind(request.GetString("kind", ""))
		if err != nil {
			return err
		}
		defer s.describe(ctx, r, window)
		forward, err := s.sess.Event(ctx, window, kind)
		r.Forwarded = &forward
		return err
	})
}

func (s *Server) handlePerformAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.call(ctx, "perform_action", func(ctx context.Context, r *toolResult) error {
		window, err := windowParam(request)
		if err != nil {
			return err
		}
		action, err := model.ParseAction(request.GetString("action", string(model.ActionClick)))
		if err != nil {
			return err
		}
		req := model.ActionRequest{
			Action: action,
			Target: model.NodeID(request.GetInt("target", 0)),
		}
		if v := request.GetString("value", ""); v != "" {
			req.Data = &model.ActionData{Value: v}
		}
		text := request.GetString("text", "")
		roles := request.GetString("roles", "")
		exact := request.GetBool("exact", false)
		if err := s.sess.ResolveTarget(ctx, window, &req, text, roles, exact); err != nil {
			return err
		}
		defer s.describe(ctx, r, window)
		return s.sess.PerformAction(ctx, window, req)
	})
}

func (s *Server) handleReadTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.call(ctx, "read_tree", func(ctx context.Context, r *toolResult) error {
		window, err := windowParam(request)
		if err != nil {
			return err
		}
		s.describe(ctx, r, window)
		if request.GetBool("full", false) {
			snapshot, err := s.sess.Snapshot(ctx, window)
			if err != nil {
				return err
			}
			r.Snapshot = &snapshot
			return nil
		}
		r.Tree, err = s.sess.Tree(ctx, window)
		return err
	})
}

func (s *Server) handleDestroyWindow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.call(ctx, "destroy_window", func(ctx context.Context, r *toolResult) error {
		window, err := windowParam(request)
		if err != nil {
			return err
		}
		return s.sess.Destroy(ctx, window)
	})
}

func (s *Server) handleActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.call(ctx, "actions", func(ctx context.Context, r *toolResult) error {
		r.Actions = s.sess.Actions(ctx)
		return nil
	})
}
