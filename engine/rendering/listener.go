package rendering

// Listener observes a Rendering. Callbacks run while the descriptor lock is held,
// so they must return quickly and must not call back into the Rendering.
type Listener interface {
	// ResourceAdded is called after an entry is stored under a key that was previously empty.
	ResourceAdded(kind ResourceKind, key int)

	// ResourceChanged is called after an existing entry is overwritten.
	ResourceChanged(kind ResourceKind, key int)

	// ResourceRemoved is called after an entry is erased.
	ResourceRemoved(kind ResourceKind, key int)

	// CommandsChanged is called after the command list is replaced.
	CommandsChanged()
}

// ListenerFuncs adapts plain functions to the Listener interface. Nil fields are ignored.
// Register a pointer so the listener can later be removed.
type ListenerFuncs struct {
	OnAdded           func(kind ResourceKind, key int)
	OnChanged         func(kind ResourceKind, key int)
	OnRemoved         func(kind ResourceKind, key int)
	OnCommandsChanged func()
}

var _ Listener = &ListenerFuncs{}

func (l *ListenerFuncs) ResourceAdded(kind ResourceKind, key int) {
	if l.OnAdded != nil {
		l.OnAdded(kind, key)
	}
}

func (l *ListenerFuncs) ResourceChanged(kind ResourceKind, key int) {
	if l.OnChanged != nil {
		l.OnChanged(kind, key)
	}
}

func (l *ListenerFuncs) ResourceRemoved(kind ResourceKind, key int) {
	if l.OnRemoved != nil {
		l.OnRemoved(kind, key)
	}
}

func (l *ListenerFuncs) CommandsChanged() {
	if l.OnCommandsChanged != nil {
		l.OnCommandsChanged()
	}
}
