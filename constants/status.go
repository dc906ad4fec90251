package constants

// JobStatus is the lifecycle state of a queued extraction job.
type JobStatus string

const (
	JobStatusQueued  JobStatus = "QUEUED"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusDone    JobStatus = "DONE"
	JobStatusFailed  JobStatus = "FAILED"
)

// Extraction tuning shared by the acquisition and processing stages.
const (
	// MinNativeTextLength is the trimmed length below which native PDF text is
	// considered missing and the external plain-text tool is tried.
	MinNativeTextLength = 50

	// MaxBatchDocuments bounds a single batch request.
	MaxBatchDocuments = 10

	// DefaultOCRSkipConfidence is the pre-OCR score above which OCR is skipped.
	DefaultOCRSkipConfidence = 0.8
)
