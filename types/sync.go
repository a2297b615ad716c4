package types

import "time"

// SyncStats is the run-scoped record of one full sync. It is created when a
// run starts, mutated only by the orchestrator, and immutable once the run
// finishes.
type SyncStats struct {
	RunID            string    `json:"run_id" bson:"_id"`
	StartTime        time.Time `json:"start_time" bson:"start_time"`
	EndTime          time.Time `json:"end_time" bson:"end_time"`
	DurationSeconds  float64   `json:"duration_seconds" bson:"duration_seconds"`
	DocumentsFetched int       `json:"documents_fetched" bson:"documents_fetched"`
	ChunksCreated    int       `json:"chunks_created" bson:"chunks_created"`
	ChunksEmbedded   int       `json:"chunks_embedded" bson:"chunks_embedded"`
	ChunksUploaded   int       `json:"chunks_uploaded" bson:"chunks_uploaded"`
	FailedUploads    int       `json:"failed_uploads" bson:"failed_uploads"`
	Errors           []string  `json:"errors" bson:"errors"`
	Success          bool      `json:"success" bson:"success"`
}

// UploadResult aggregates per-item outcomes of an index upload.
type UploadResult struct {
	Uploaded int `json:"uploaded"`
	Failed   int `json:"failed"`
}
