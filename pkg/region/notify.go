package region

// Event describes an atomic linked-group membership change: a linked family
// that was added to or removed from a region as one unit.
type Event struct {
	RegionID  string   `json:"region_id"`
	FamilyID  string   `json:"family_id"`
	MemberIDs []string `json:"member_ids"`
	Added     bool     `json:"added"`
}

// Notifier receives linked-group events emitted by Model.Toggle so callers
// can surface them to the user. Delivery is best-effort: the membership
// mutation has already been applied when the notifier runs, and a notifier
// cannot fail the operation.
type Notifier interface {
	OnLinkedGroupToggled(e Event)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) OnLinkedGroupToggled(Event) {}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Event)

func (f NotifierFunc) OnLinkedGroupToggled(e Event) { f(e) }
