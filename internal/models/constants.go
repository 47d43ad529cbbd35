package models

const (
	// SyncTaskUpsert mirrors a created booking to the export sinks.
	SyncTaskUpsert = "upsert"
	// SyncTaskDelete removes a cancelled booking from the export sinks.
	SyncTaskDelete = "delete"
)

const (
	SyncStatusPending   = "pending"
	SyncStatusRetry     = "retry"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

const (
	// WorkerQueueSize is the in-memory export queue capacity.
	WorkerQueueSize = 128

	// DefaultSlotCacheTTL is how long computed slot lists stay cached, in seconds.
	DefaultSlotCacheTTL = 5 * 60
)
