package catalog

// Data API v3 response shapes, reduced to the fields the listing needs.

type APIResourceID struct {
	Kind    string `json:"kind"`
	VideoID string `json:"videoId"`
}

type APIPlaylistSnippet struct {
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
}

type APIPlaylist struct {
	ID      string             `json:"id"`
	Snippet APIPlaylistSnippet `json:"snippet"`
}

type APIPlaylistListResponse struct {
	Items []APIPlaylist `json:"items"`
}

type APIPlaylistItemSnippet struct {
	Title      string        `json:"title"`
	ResourceID APIResourceID `json:"resourceId"`
	Position   int           `json:"position"`
}

type APIPlaylistItemContentDetails struct {
	VideoID string `json:"videoId"`
}

type APIPlaylistItem struct {
	ID             string                        `json:"id"`
	Snippet        APIPlaylistItemSnippet        `json:"snippet"`
	ContentDetails APIPlaylistItemContentDetails `json:"contentDetails"`
}

type APIPlaylistItemListResponse struct {
	NextPageToken string            `json:"nextPageToken"`
	Items         []APIPlaylistItem `json:"items"`
}

type APIErrorDetail struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Domain  string `json:"domain"`
}

type APIErrorBody struct {
	Message string           `json:"message"`
	Errors  []APIErrorDetail `json:"errors"`
	Code    int              `json:"code"`
}

type APIErrorResponse struct {
	Error APIErrorBody `json:"error"`
}
