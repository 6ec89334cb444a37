package worker

// Log messages
const (
	LogMsgWorkerJobFailed   = "Worker job failed"
	LogMsgRotationEnsured   = "Rotation refresh tick completed"
	LogMsgRotationTickError = "Rotation refresh tick failed"
)
