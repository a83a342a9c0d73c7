package model

// TaskState is the lifecycle state of a URL in the crawl frontier.
//
// Every URL moves strictly forward: pending (enqueued, waiting for a
// worker), processing (claimed by a worker), done (consumed, never
// dispatched again). A crash can strand tasks in processing; a resumed
// run moves them back to pending before any worker starts.
type TaskState string

// Frontier states as stored in the url_queue status column.
const (
	TaskPending    TaskState = "pending"
	TaskProcessing TaskState = "processing"
	TaskDone       TaskState = "done"
)

// Task is one claimed unit of crawl work: a URL and the depth it was
// discovered at. Depth is 1-based at the seed.
type Task struct {
	// URL is the absolute page URL to fetch.
	URL string

	// Depth is the crawl depth this URL was discovered at.
	Depth int

	// State is the frontier state at the time the task was read.
	State TaskState
}
