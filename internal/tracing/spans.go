package tracing

// Span attribute keys for registry tracing.
const (
	AttrSessionID    = "session.id"
	AttrFormPath     = "form.path"
	AttrFormParent   = "form.parent"
	AttrFormChild    = "form.child"
	AttrNodeKind     = "form.node.kind"
	AttrOutcome      = "registry.outcome"
	AttrSubscribers  = "events.subscribers"
	AttrErrorMessage = "error.message"
)

// Span names.
const (
	SpanRegisterRoot    = "registry.register_root"
	SpanRegisterElement = "registry.register_element"
	SpanLayoutApply     = "layout.apply"
)

// Registration outcomes recorded under AttrOutcome.
const (
	OutcomeRegistered = "registered"
	OutcomeReplaced   = "replaced"
	OutcomeDuplicate  = "duplicate"
	OutcomeNoParent   = "parent_missing"
	OutcomeInvalid    = "invalid"
	OutcomeClosed     = "closed"
)

// Event names for span events.
const (
	EventPublished           = "event.published"
	EventRegistrationDropped = "registration.dropped"
)
