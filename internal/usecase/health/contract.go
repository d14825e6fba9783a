package health

import "context"

// DBPinger checks article store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EngineChecker runs a recommendation against a fixed in-memory corpus.
type EngineChecker interface {
	SelfCheck(ctx context.Context) error
}
