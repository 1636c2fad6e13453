package domain

import "time"

type JobStatus string

const (
	JobOpen       JobStatus = "open"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

func ValidJobStatus(s JobStatus) bool {
	switch s {
	case JobOpen, JobInProgress, JobCompleted, JobCancelled:
		return true
	}
	return false
}

// JobMetrics summarises completed revenue over a window plus the
// all-time open backlog.
type JobMetrics struct {
	GrossClosedDealsAmount float64 `json:"grossClosedDealsAmount"`
	CompletedJobsCount     int     `json:"completedJobsCount"`
	OpenJobsCount          int     `json:"openJobsCount"`
}

type Job struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Price     float64   `json:"price"`
	Status    JobStatus `json:"status"`
	ClientID  string    `json:"clientId"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}
