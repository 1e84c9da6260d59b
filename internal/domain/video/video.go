// Package video provides the Video and PlaylistItem domain entities.
package video

// Video represents a YouTube video as far as duration reporting needs it.
type Video struct {
	ID       string // YouTube video ID
	Duration string // ISO 8601 duration as reported by the API (e.g. "PT4M13S")
}

// PlaylistItem is one entry of a playlist page.
type PlaylistItem struct {
	VideoID  string // Referenced video ID
	Position int    // Zero-based position within the playlist
}

// IDs returns the video IDs of the given items, preserving order.
func IDs(items []PlaylistItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.VideoID
	}
	return ids
}

// Page is one page of a playlist listing.
type Page struct {
	Items         []PlaylistItem
	NextPageToken string // empty on the last page
	TotalResults  int    // total items in the playlist as reported upstream
}

// IsLast reports whether no further page follows.
func (p *Page) IsLast() bool {
	return p.NextPageToken == ""
}
