package replica

import "github.com/zoobzio/capitan"

// Signals for replicated mutation lifecycle events.
var (
	WriteCompleted  = capitan.NewSignal("replica.write.completed", "Replicated write finished")
	WriteFailed     = capitan.NewSignal("replica.write.failed", "Backend write failed")
	DeleteCompleted = capitan.NewSignal("replica.delete.completed", "Replicated deletion finished")
	DeleteFailed    = capitan.NewSignal("replica.delete.failed", "Backend deletion failed")
	RenameCompleted = capitan.NewSignal("replica.rename.completed", "Replicated rename finished")
	RenameFailed    = capitan.NewSignal("replica.rename.failed", "Backend rename failed")
	MetadataSet     = capitan.NewSignal("replica.metadata.set", "Metadata applied to capable backends")
)

// Field keys for event extraction.
var (
	FieldAdapter  = capitan.NewStringKey("adapter")
	FieldKey      = capitan.NewStringKey("key")
	FieldNewKey   = capitan.NewStringKey("new_key")
	FieldRole     = capitan.NewStringKey("role")
	FieldError    = capitan.NewErrorKey("error")
	FieldDuration = capitan.NewDurationKey("duration")
	FieldOK       = capitan.NewBoolKey("ok")
	FieldBytes    = capitan.NewIntKey("bytes")
)

// failedSignal maps a mutation to its per-backend failure signal.
func failedSignal(op Op) capitan.Signal {
	switch op {
	case OpDelete:
		return DeleteFailed
	case OpRename:
		return RenameFailed
	default:
		return WriteFailed
	}
}
