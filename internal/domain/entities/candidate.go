package entities

// Candidate shapes are the normalized search results returned by the search
// endpoints. They exist only within one response cycle; a client turns a
// chosen candidate into a Favorite via the favorites API. Field names mirror
// what the web client binds to, so they stay lowerCamel / provider-flavored.

// BookCandidate is a normalized Google Books volume
type BookCandidate struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	PublishedDate string   `json:"publishedDate"`
	Description   string   `json:"description"`
	PageCount     int      `json:"pageCount"`
	Thumbnail     *string  `json:"thumbnail"`
	PreviewLink   string   `json:"previewLink"`
	Categories    []string `json:"categories"`
}

// GameCandidate is a normalized IGDB game
type GameCandidate struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Image            *string  `json:"image"`
	Platform         []string `json:"platform"`
	Rating           *int     `json:"rating"`
	Summary          string   `json:"summary"`
	FirstReleaseDate *int64   `json:"first_release_date"`
}

// MusicArtist is the artist slice element of a MusicCandidate
type MusicArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// MusicAlbum is the album block of a MusicCandidate
type MusicAlbum struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ReleaseDate string  `json:"releaseDate"`
	Image       *string `json:"image"`
	URL         string  `json:"url"`
}

// MusicCandidate is a normalized Spotify track
type MusicCandidate struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Artists    []MusicArtist `json:"artists"`
	Album      MusicAlbum    `json:"album"`
	PreviewURL *string       `json:"previewUrl"`
	SpotifyURL *string       `json:"spotifyUrl"`
}

// MovieCandidate is a normalized IMDB suggestion entry. The duplicated
// id/title/year/poster fields keep both the lowercase keys the search UI uses
// and the IMDB-style capitalized keys the favorites browser expects.
type MovieCandidate struct {
	ID      string `json:"id"`
	IMDBID  string `json:"imdbID"`
	Title   string `json:"title"`
	TitleC  string `json:"Title"`
	Year    *int   `json:"year"`
	YearC   string `json:"Year"`
	Image   string `json:"image"`
	Poster  string `json:"Poster"`
	Actors  string `json:"actors"`
	IMDBUrl string `json:"imdbUrl"`
	Rank    *int   `json:"rank"`
	Width   *int   `json:"width"`
	Height  *int   `json:"height"`
}

// ImageUser is the attribution block of an ImageCandidate
type ImageUser struct {
	Name    string `json:"name"`
	Profile string `json:"profile"`
}

// ImageCandidate is a normalized Unsplash photo
type ImageCandidate struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Thumb       string    `json:"thumb"`
	Download    string    `json:"download"`
	Unsplash    string    `json:"unsplash"`
	User        ImageUser `json:"user"`
}
