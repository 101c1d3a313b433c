package domain

import (
	"time"
)

// JobState is the lifecycle state of a playlist download job.
type JobState string

const (
	JobStateInitializing JobState = "initializing"
	JobStateDownloading  JobState = "downloading"
	JobStateCompleted    JobState = "completed"
	JobStateFailed       JobState = "failed"
	JobStateCancelled    JobState = "cancelled"
)

// IsTerminal reports whether no further transitions are possible.
func (s JobState) IsTerminal() bool {
	switch s {
	case JobStateCompleted, JobStateFailed, JobStateCancelled:
		return true
	}
	return false
}

// IsActive reports whether the job can still be cancelled.
func (s JobState) IsActive() bool {
	return s == JobStateInitializing || s == JobStateDownloading
}

// TaskStatus represents the download status of a single video
type TaskStatus string

const (
	TaskStatusPending     TaskStatus = "pending"
	TaskStatusDownloading TaskStatus = "downloading"
	TaskStatusCompleted   TaskStatus = "completed"
	TaskStatusFailed      TaskStatus = "failed"
	TaskStatusSkipped     TaskStatus = "skipped"
)

// IsFinished reports whether the task received its final outcome.
func (s TaskStatus) IsFinished() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed || s == TaskStatusSkipped
}

// VideoTask tracks one playlist entry inside a job.
type VideoTask struct {
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	VideoID     string     `json:"video_id"`
	Title       string     `json:"title"`
	Status      TaskStatus `json:"status"`
	FilePath    string     `json:"file_path,omitempty"`
	Error       string     `json:"error,omitempty"`
	Progress    int        `json:"progress"`
	FileSize    int64      `json:"file_size,omitempty"`
}

// DownloadJob is the record of one playlist download run.
type DownloadJob struct {
	StartedAt      time.Time   `json:"started_at"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	CurrentVideo   *VideoTask  `json:"current_video,omitempty"`
	ID             string      `json:"id"`
	PlaylistID     string      `json:"playlist_id"`
	PlaylistTitle  string      `json:"playlist_title"`
	State          JobState    `json:"state"`
	StoragePath    string      `json:"storage_path"`
	Error          string      `json:"error,omitempty"`
	Videos         []VideoTask `json:"videos"`
	TotalVideos    int         `json:"total_videos"`
	CompletedCount int         `json:"completed_count"`
	FailedCount    int         `json:"failed_count"`
	SkippedCount   int         `json:"skipped_count"`
	CurrentIndex   int         `json:"current_index"`
}

// Clone returns a deep copy safe to hand to readers.
func (j *DownloadJob) Clone() *DownloadJob {
	if j == nil {
		return nil
	}
	c := *j
	c.CompletedAt = cloneTime(j.CompletedAt)
	c.Videos = make([]VideoTask, len(j.Videos))
	for i, v := range j.Videos {
		c.Videos[i] = v.clone()
	}
	if j.CurrentVideo != nil {
		cv := j.CurrentVideo.clone()
		c.CurrentVideo = &cv
	}
	return &c
}

// ProcessedCount is the number of videos with a final outcome.
func (j *DownloadJob) ProcessedCount() int {
	return j.CompletedCount + j.FailedCount + j.SkippedCount
}

// ArchivableCount is the number of videos whose file should be on disk.
func (j *DownloadJob) ArchivableCount() int {
	return j.CompletedCount + j.SkippedCount
}

// OverallProgress is the share of processed videos, 0-100.
func (j *DownloadJob) OverallProgress() int {
	if j.TotalVideos == 0 {
		return 0
	}
	return j.ProcessedCount() * 100 / j.TotalVideos
}

func (v VideoTask) clone() VideoTask {
	v.StartedAt = cloneTime(v.StartedAt)
	v.CompletedAt = cloneTime(v.CompletedAt)
	return v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
