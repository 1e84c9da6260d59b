// Package playlist provides the Playlist domain entity.
package playlist

// Thumbnail is one rendition of a playlist thumbnail.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Snippet holds the descriptive metadata of a playlist.
type Snippet struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Thumbnails  map[string]Thumbnail `json:"thumbnails,omitempty"`
}

// ContentDetails holds playlist content information.
type ContentDetails struct {
	ItemCount int `json:"itemCount"`
}

// Playlist represents YouTube playlist metadata.
// It is passed through to clients in the shape the API returns it.
type Playlist struct {
	ID             string         `json:"id"`
	Snippet        Snippet        `json:"snippet"`
	ContentDetails ContentDetails `json:"contentDetails"`
}

// Title returns the playlist title.
func (p *Playlist) Title() string {
	return p.Snippet.Title
}

// ThumbnailURL returns the URL of the largest known thumbnail, or an empty
// string when there is none.
func (p *Playlist) ThumbnailURL() string {
	for _, size := range []string{"maxres", "standard", "high", "medium", "default"} {
		if t, ok := p.Snippet.Thumbnails[size]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}
