package mirror

import (
	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/platform"
)

// translateChanges turns tree changes into native notifications. Nodes the
// filter hides produce nothing except their destruction.
func (b *Backend) translateChanges(changes []model.Change) []platform.Notification {
	var events []platform.Notification
	for _, c := range changes {
		switch c.Type {
		case model.ChangeAdded:
			n := *c.Node
			if model.Filter(n) != model.FilterInclude {
				continue
			}
			events = b.appendSignal(events, SignalNodeCreated, n.ID, n.Role, "")
			if n.Name != "" && n.Live != model.LiveOff {
				events = b.appendAnnouncement(events, n)
			}

		case model.ChangeChanged:
			n, old := *c.Node, *c.Old
			if model.Filter(n) != model.FilterInclude {
				continue
			}
			if c.Changed("t") {
				events = b.appendSignal(events, SignalNameChanged, n.ID, n.Role, n.Name)
			}
			if c.Changed("v") {
				events = b.appendSignal(events, SignalValueChanged, n.ID, n.Role, n.Value)
			}
			if c.Changed("s") {
				events = b.appendSignal(events, SignalSelectionChanged, n.ID, n.Role, "")
			}
			if c.Changed("c") {
				events = b.appendSignal(events, SignalChildrenChanged, n.ID, n.Role, "")
			}
			if n.Name != "" && n.Live != model.LiveOff &&
				(n.Name != old.Name || n.Live != old.Live || model.Filter(old) != model.FilterInclude) {
				events = b.appendAnnouncement(events, n)
			}

		case model.ChangeRemoved:
			events = b.appendSignal(events, SignalNodeDestroyed, c.ID, c.Old.Role, "")

		case model.ChangeFocusMoved:
			n, ok := b.tree.Node(c.ID)
			if !ok || model.Filter(n) != model.FilterInclude {
				continue
			}
			events = b.appendSignal(events, SignalFocusChanged, n.ID, n.Role, "")
		}
	}
	return events
}

func (b *Backend) appendSignal(events []platform.Notification, s Signal, id model.NodeID, role, text string) []platform.Notification {
	name := b.translator.Name(s)
	if name == "" {
		return events
	}
	n := platform.Notification{
		Window: b.handle,
		Name:   name,
		Node:   id,
		Text:   text,
	}
	if role != "" {
		n.Role = b.translator.Role(role)
	}
	return append(events, n)
}

func (b *Backend) appendAnnouncement(events []platform.Notification, n model.Node) []platform.Notification {
	name := b.translator.Name(SignalAnnouncement)
	if name == "" {
		return events
	}
	return append(events, platform.Notification{
		Window:   b.handle,
		Name:     name,
		Node:     n.ID,
		Role:     b.translator.Role(n.Role),
		Text:     n.Name,
		Priority: b.translator.Priority(n.Live),
	})
}
