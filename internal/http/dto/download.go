package dto

import (
	"time"

	"github.com/cesargomez89/tubedrums/internal/domain"
)

type VideoResponse struct {
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	VideoID     string     `json:"videoId"`
	VideoTitle  string     `json:"videoTitle"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	FilePath    string     `json:"filePath,omitempty"`
	Progress    int        `json:"progress"`
	FileSize    int64      `json:"fileSize,omitempty"`
}

type DownloadResponse struct {
	StartedAt         time.Time       `json:"startedAt"`
	CompletedAt       *time.Time      `json:"completedAt,omitempty"`
	CurrentVideo      *VideoResponse  `json:"currentVideo,omitempty"`
	DownloadID        string          `json:"downloadId"`
	PlaylistID        string          `json:"playlistId"`
	PlaylistTitle     string          `json:"playlistTitle"`
	Status            string          `json:"status"`
	DownloadPath      string          `json:"downloadPath"`
	Error             string          `json:"error,omitempty"`
	Videos            []VideoResponse `json:"videos"`
	TotalVideos       int             `json:"totalVideos"`
	CompletedVideos   int             `json:"completedVideos"`
	FailedVideos      int             `json:"failedVideos"`
	SkippedVideos     int             `json:"skippedVideos"`
	CurrentVideoIndex int             `json:"currentVideoIndex"`
	Progress          int             `json:"progress"`
}

type StartDownloadResponse struct {
	DownloadID string `json:"downloadId"`
	Message    string `json:"message"`
	StatusURL  string `json:"statusUrl"`
}

type StatsResponse struct {
	DownloadID string `json:"downloadId"`
	TotalFiles int    `json:"totalFiles"`
	TotalSize  int64  `json:"totalSize"`
}

func NewVideoResponse(v domain.VideoTask) VideoResponse {
	return VideoResponse{
		StartedAt:   v.StartedAt,
		CompletedAt: v.CompletedAt,
		VideoID:     v.VideoID,
		VideoTitle:  v.Title,
		Status:      string(v.Status),
		Error:       v.Error,
		FilePath:    v.FilePath,
		Progress:    v.Progress,
		FileSize:    v.FileSize,
	}
}

func NewDownloadResponse(j *domain.DownloadJob) DownloadResponse {
	resp := DownloadResponse{
		StartedAt:         j.StartedAt,
		CompletedAt:       j.CompletedAt,
		DownloadID:        j.ID,
		PlaylistID:        j.PlaylistID,
		PlaylistTitle:     j.PlaylistTitle,
		Status:            string(j.State),
		DownloadPath:      j.StoragePath,
		Error:             j.Error,
		Videos:            make([]VideoResponse, len(j.Videos)),
		TotalVideos:       j.TotalVideos,
		CompletedVideos:   j.CompletedCount,
		FailedVideos:      j.FailedCount,
		SkippedVideos:     j.SkippedCount,
		CurrentVideoIndex: j.CurrentIndex,
		Progress:          j.OverallProgress(),
	}
	for i, v := range j.Videos {
		resp.Videos[i] = NewVideoResponse(v)
	}
	if j.CurrentVideo != nil {
		cv := NewVideoResponse(*j.CurrentVideo)
		resp.CurrentVideo = &cv
	}
	return resp
}

func NewDownloadResponses(jobs []*domain.DownloadJob) []DownloadResponse {
	out := make([]DownloadResponse, len(jobs))
	for i, j := range jobs {
		out[i] = NewDownloadResponse(j)
	}
	return out
}

func NewStatsResponse(id string, s domain.DirStats) StatsResponse {
	return StatsResponse{DownloadID: id, TotalFiles: s.TotalFiles, TotalSize: s.TotalSize}
}
