package ir

// Version constants for record schema and engine.
const (
	// RecordVersion is the persisted record schema version.
	RecordVersion = "1"

	// EngineVersion is the accord engine version.
	EngineVersion = "0.1.0"
)
