package orchestrator

// Sink observes bundling. It never affects control flow.
type Sink interface {
	// Message reports progress for a library.
	Message(library string, stage Stage, text string)

	// Warning reports a non-fatal diagnostic as soon as it is known.
	Warning(library string, text string)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Message(string, Stage, string) {}
func (NopSink) Warning(string, string)        {}
