package recommendation

// Document is the unit of comparison: an opaque identifier plus its text.
type Document struct {
	ID   string
	Text string
}

// Item is a single ranked recommendation.
type Item struct {
	ID    string
	Score float64
}

// Status classifies a recommendation outcome.
type Status string

const (
	// StatusOK means at least one candidate was ranked.
	StatusOK Status = "ok"
	// StatusEmpty means there is legitimately nothing to recommend.
	StatusEmpty Status = "empty"
	// StatusFailed means the engine broke; the error has been logged.
	StatusFailed Status = "failed"
)

// Reason explains an empty or failed outcome.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonEmptyCorpus     Reason = "empty_corpus"
	ReasonEmptyVocabulary Reason = "empty_vocabulary"
	ReasonNoCapacity      Reason = "no_capacity"
	ReasonInternal        Reason = "internal"
	ReasonCorpusFetch     Reason = "corpus_fetch"
)

// Outcome is the result of one recommendation call.
type Outcome struct {
	status Status
	reason Reason
	items  []Item
	err    error
}

// Found creates a successful outcome. An empty item list degrades to an empty outcome.
func Found(items []Item) Outcome {
	if len(items) == 0 {
		return Empty(ReasonEmptyCorpus)
	}
	return Outcome{status: StatusOK, items: items}
}

// Empty creates an outcome for "no related content".
func Empty(reason Reason) Outcome {
	return Outcome{status: StatusEmpty, reason: reason}
}

// Failed creates an outcome for an internal failure.
func Failed(reason Reason, err error) Outcome {
	return Outcome{status: StatusFailed, reason: reason, err: err}
}

// Status returns the outcome classification.
func (o Outcome) Status() Status { return o.status }

// Reason returns why the outcome is empty or failed.
func (o Outcome) Reason() Reason { return o.reason }

// Items returns the ranked items (nil unless StatusOK).
func (o Outcome) Items() []Item { return o.items }

// Err returns the internal error of a failed outcome.
func (o Outcome) Err() error { return o.err }

// OK reports whether there is something to render.
func (o Outcome) OK() bool { return o.status == StatusOK }
