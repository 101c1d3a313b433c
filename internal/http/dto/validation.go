package dto

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/cesargomez89/tubedrums/internal/constants"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ToMap(errs []ValidationError) map[string]string {
	result := make(map[string]string)
	for _, e := range errs {
		result[e.Field] = e.Message
	}
	return result
}

func ToResponse(errs []ValidationError) string {
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

type StartDownloadRequest struct {
	PlaylistID string `json:"playlistId"`
}

func (r *StartDownloadRequest) Validate() []ValidationError {
	var errs []ValidationError
	id := strings.TrimSpace(r.PlaylistID)
	switch {
	case id == "":
		errs = append(errs, ValidationError{Field: "playlistId", Message: "Playlist ID is required"})
	case utf8.RuneCountInString(id) > constants.MaxPlaylistIDLength:
		errs = append(errs, ValidationError{Field: "playlistId",
			Message: fmt.Sprintf("Playlist ID must be at most %d characters", constants.MaxPlaylistIDLength)})
	}
	r.PlaylistID = id
	return errs
}

// ValidateDownloadID accepts only canonical UUIDs.
func ValidateDownloadID(id string) []ValidationError {
	if _, err := uuid.Parse(id); err != nil || len(id) != 36 {
		return []ValidationError{{Field: "downloadId", Message: "Download ID must be a valid UUID"}}
	}
	return nil
}
