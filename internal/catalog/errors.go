package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/cesargomez89/tubedrums/internal/domain"
)

// MapAPIError translates a non-2xx Data API response into a typed error.
func MapAPIError(status int, body string) error {
	var apiErr APIErrorResponse
	_ = json.Unmarshal([]byte(body), &apiErr)
	if apiErr.Error.Code != 0 {
		status = apiErr.Error.Code
	}
	reason := apiErr.Reason()
	details := map[string]string{"reason": reason}

	switch status {
	case http.StatusBadRequest:
		return domain.NewError(domain.CodeYouTubeBadRequest, http.StatusBadRequest,
			orDefault(apiErr.Error.Message, "Invalid request to YouTube API")).WithDetails(details)
	case http.StatusUnauthorized:
		return domain.NewError(domain.CodeYouTubeUnauthorized, http.StatusUnauthorized,
			"YouTube API authentication failed. Please re-authenticate.").WithDetails(details)
	case http.StatusForbidden:
		switch reason {
		case "quotaExceeded", "dailyLimitExceeded":
			return domain.NewError(domain.CodeYouTubeQuotaExceeded, http.StatusForbidden,
				"YouTube API quota exceeded. Please try again later.").WithDetails(details)
		case "forbidden", "insufficientPermissions":
			return domain.NewError(domain.CodeYouTubeForbidden, http.StatusForbidden,
				"Insufficient permissions to perform this operation on YouTube.").WithDetails(details)
		}
		return domain.NewError(domain.CodeYouTubeForbidden, http.StatusForbidden,
			orDefault(apiErr.Error.Message, "Access forbidden by YouTube API")).WithDetails(details)
	case http.StatusNotFound:
		return domain.NewError(domain.CodeYouTubeNotFound, http.StatusNotFound,
			"The requested YouTube resource was not found").WithDetails(details)
	}

	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	return domain.NewError(domain.CodeInternal, status,
		orDefault(apiErr.Error.Message, "YouTube API error occurred")).WithDetails(details)
}

// MapTransportError wraps a failure to reach the catalog at all.
func MapTransportError(err error) error {
	if _, ok := domain.AsError(err); ok {
		return err
	}
	return domain.ErrServiceUnavailable("Unable to connect to YouTube API. Please check your internet connection.").Wrap(err)
}

// MapCredentialError wraps a failure to obtain an access token.
func MapCredentialError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return domain.NewError(domain.CodeYouTubeUnauthorized, http.StatusUnauthorized,
			"YouTube API authentication failed. Please re-authenticate.").Wrap(err)
	}
	return MapTransportError(err)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
