package catalog

import (
	"context"
	"net/http"
	"strconv"

	"resty.dev/v3"

	"github.com/cesargomez89/tubedrums/internal/constants"
	"github.com/cesargomez89/tubedrums/internal/domain"
)

// DataAPIProvider lists playlists through the YouTube Data API v3 on behalf
// of an OAuth credential.
type DataAPIProvider struct {
	client *resty.Client
}

// NewDataAPIProvider builds a provider for baseURL. transport may be nil.
func NewDataAPIProvider(baseURL string, transport http.RoundTripper) *DataAPIProvider {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(constants.DefaultHTTPTimeout)
	client.SetHeader("Accept", "application/json")
	if transport != nil {
		client.SetTransport(transport)
	}
	return &DataAPIProvider{client: client}
}

func (p *DataAPIProvider) Close() error {
	return p.client.Close()
}

func (p *DataAPIProvider) ListPlaylistItems(ctx context.Context, playlistID string, cred Credential) (*domain.Playlist, error) {
	if cred == nil {
		return nil, domain.NewError(domain.CodeYouTubeNotAuthed, http.StatusServiceUnavailable,
			"YouTube API not authenticated")
	}
	token, err := cred.Token()
	if err != nil {
		return nil, MapCredentialError(err)
	}

	title, err := p.playlistTitle(ctx, playlistID, token.AccessToken)
	if err != nil {
		return nil, err
	}

	playlist := &domain.Playlist{ID: playlistID, Title: title}
	pageToken := ""
	for page := 0; page < constants.MaxPlaylistPages; page++ {
		params := map[string]string{
			"part":       "snippet,contentDetails",
			"playlistId": playlistID,
			"maxResults": strconv.Itoa(constants.PlaylistPageSize),
		}
		if pageToken != "" {
			params["pageToken"] = pageToken
		}

		var out APIPlaylistItemListResponse
		if err := p.get(ctx, "/playlistItems", params, token.AccessToken, &out); err != nil {
			return nil, err
		}
		playlist.Items = append(playlist.Items, out.ToItems()...)

		pageToken = out.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return playlist, nil
}

func (p *DataAPIProvider) playlistTitle(ctx context.Context, playlistID, accessToken string) (string, error) {
	var out APIPlaylistListResponse
	params := map[string]string{"part": "snippet", "id": playlistID}
	if err := p.get(ctx, "/playlists", params, accessToken, &out); err != nil {
		return "", err
	}
	if len(out.Items) == 0 {
		return "", domain.NewError(domain.CodeYouTubeNotFound, http.StatusNotFound,
			"Playlist not found").WithDetails(map[string]string{"playlistId": playlistID})
	}
	return out.Items[0].Snippet.Title, nil
}

func (p *DataAPIProvider) get(ctx context.Context, path string, params map[string]string, accessToken string, result any) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetAuthToken(accessToken).
		SetResult(result).
		Get(path)
	if err != nil {
		return MapTransportError(err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return MapAPIError(resp.StatusCode(), resp.String())
	}
	return nil
}

var _ Provider = (*DataAPIProvider)(nil)
