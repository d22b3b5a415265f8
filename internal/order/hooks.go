package order

// Hook is a side-effecting observer callback fired during a status
// transition. A non-nil error aborts the transition at that point; whatever
// completed before the failure stays applied.
type Hook func(o *Order) error

type transitionKey struct {
	from Status
	to   Status
}

// Hooks is an explicit registry of status transition observers with three
// dispatch points: before the new status, on the exact (old, new) pair and
// after the new status.
type Hooks struct {
	before     map[Status][]Hook
	transition map[transitionKey][]Hook
	after      map[Status][]Hook
}

// NewHooks returns an empty hook registry.
func NewHooks() *Hooks {
	return &Hooks{
		before:     map[Status][]Hook{},
		transition: map[transitionKey][]Hook{},
		after:      map[Status][]Hook{},
	}
}

// OnBefore registers a hook fired before any transition into status.
func (h *Hooks) OnBefore(status Status, hook Hook) {
	h.before[status] = append(h.before[status], hook)
}

// OnTransition registers a hook fired on the exact from -> to pair.
func (h *Hooks) OnTransition(from, to Status, hook Hook) {
	key := transitionKey{from: from, to: to}
	h.transition[key] = append(h.transition[key], hook)
}

// OnAfter registers a hook fired after the status is committed.
func (h *Hooks) OnAfter(status Status, hook Hook) {
	h.after[status] = append(h.after[status], hook)
}

func (h *Hooks) fireBefore(status Status, o *Order) error {
	if h == nil {
		return nil
	}
	return fire(h.before[status], o)
}

func (h *Hooks) fireTransition(from, to Status, o *Order) error {
	if h == nil {
		return nil
	}
	return fire(h.transition[transitionKey{from: from, to: to}], o)
}

func (h *Hooks) fireAfter(status Status, o *Order) error {
	if h == nil {
		return nil
	}
	return fire(h.after[status], o)
}

func fire(hooks []Hook, o *Order) error {
	for _, hook := range hooks {
		if err := hook(o); err != nil {
			return err
		}
	}
	return nil
}
