package event

// Listener receives events it declared interest in. The returned bool reports
// whether the listener consumed the event.
type Listener interface {
	OnEvent(e Event) bool
	Interest() *Interest
}

// Interest is a listener's subscription set: explicit types plus a category
// mask. The zero value listens for nothing.
type Interest struct {
	types      map[Type]struct{}
	categories Category
}

func (i *Interest) ListenForEventType(t Type) {
	if i.types == nil {
		i.types = make(map[Type]struct{}, 4)
	}
	i.types[t] = struct{}{}
}

func (i *Interest) IgnoreEventType(t Type) {
	delete(i.types, t)
}

func (i *Interest) ListenForEventCategory(mask Category) {
	i.categories |= mask
}

func (i *Interest) IgnoreEventCategory(mask Category) {
	i.categories &^= mask
}

// Categories returns the current category mask.
func (i *Interest) Categories() Category { return i.categories }

// ListensFor reports whether t was registered explicitly.
func (i *Interest) ListensFor(t Type) bool {
	_, ok := i.types[t]
	return ok
}

// Wants reports whether e matches an explicit type or intersects the mask.
func (i *Interest) Wants(e Event) bool {
	if i.ListensFor(e.Type()) {
		return true
	}
	return i.categories&e.Category() != 0
}

// FuncListener adapts a plain function into a Listener. Interest is
// configured through the returned value.
type FuncListener struct {
	interest Interest
	fn       func(Event) bool
}

func NewFuncListener(fn func(Event) bool) *FuncListener {
	return &FuncListener{fn: fn}
}

func (l *FuncListener) OnEvent(e Event) bool { return l.fn(e) }
func (l *FuncListener) Interest() *Interest  { return &l.interest }
