package testsupport

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// DefaultFolder is the movie folder fake backends serve when none is given.
const DefaultFolder = "/srv/movies"

// Movie is one row served on the fake /movies page.
type Movie struct {
	Title          string
	Path           string
	CurrentGenre   string
	SuggestedGenre string
	// MoveGenre renders an existing move button for that genre when set.
	MoveGenre string
}

// Suggestion is the reply the fake backend sends for one /suggest_genre title.
type Suggestion struct {
	Status int
	Body   map[string]any
}

// Request captures one call received by the fake backend.
type Request struct {
	Method    string
	Path      string
	Query     string
	Body      map[string]string
	RequestID string
}

// Backend is an in-process organizer backend for tests.
type Backend struct {
	URL string

	mu          sync.Mutex
	requests    []Request
	folders     map[string][]Movie
	genres      []string
	suggestions map[string]Suggestion
	moveStatus  map[string]int
	addStatus   int
	pageError   string
}

// NewBackend starts a fake backend serving folder with movies.
func NewBackend(t testing.TB, movies ...Movie) *Backend {
	t.Helper()

	b := &Backend{
		folders:     map[string][]Movie{DefaultFolder: movies},
		genres:      []string{"Action", "Comedy", "Drama", "Horror"},
		suggestions: make(map[string]Suggestion),
		moveStatus:  make(map[string]int),
		addStatus:   http.StatusOK,
	}

	r := chi.NewRouter()
	r.Get("/movies", b.handleMovies)
	r.Post("/move_movie", b.handleMove)
	r.Post("/add_genre", b.handleAddGenre)
	r.Post("/suggest_genre", b.handleSuggest)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	b.URL = server.URL
	return b
}

// SetFolder replaces the movies served for folder.
func (b *Backend) SetFolder(folder string, movies ...Movie) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.folders[folder] = movies
}

// SetGenres replaces the configured genres advertised on the page.
func (b *Backend) SetGenres(genres ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.genres = genres
}

// SetPageError makes /movies render an error banner.
func (b *Backend) SetPageError(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pageError = message
}

// Suggest configures the /suggest_genre reply for a movie path.
func (b *Backend) Suggest(path string, status int, body map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.suggestions[path] = Suggestion{Status: status, Body: body}
}

// FailMove makes /move_movie answer status for path until cleared with 0.
func (b *Backend) FailMove(path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.moveStatus, path)
		return
	}
	b.moveStatus[path] = status
}

// FailAddGenre makes /add_genre answer status.
func (b *Backend) FailAddGenre(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addStatus = status
}

// Requests returns the calls received for endpoint (e.g. "/move_movie"), in order.
func (b *Backend) Requests(endpoint string) []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Request
	for _, req := range b.requests {
		if req.Path == endpoint {
			out = append(out, req)
		}
	}
	return out
}

// Genres returns the genres currently known to the backend.
func (b *Backend) Genres() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.genres...)
}

func (b *Backend) record(r *http.Request) Request {
	req := Request{
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.RawQuery,
		RequestID: r.Header.Get("X-Request-ID"),
	}
	if r.Body != nil && r.Method == http.MethodPost {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			req.Body = body
		}
	}
	b.mu.Lock()
	b.requests = append(b.requests, req)
	b.mu.Unlock()
	return req
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (b *Backend) handleMove(w http.ResponseWriter, r *http.Request) {
	req := b.record(r)
	path := req.Body["movie_path"]
	if path == "" {
		path = req.Body["path"]
	}
	if path == "" || req.Body["base_folder"] == "" || req.Body["genre"] == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing required parameters"})
		return
	}

	b.mu.Lock()
	status, failing := b.moveStatus[path]
	if !failing {
		folder := b.folders[req.Body["base_folder"]]
		for i, movie := range folder {
			if movie.Path == path {
				b.folders[req.Body["base_folder"]] = append(folder[:i:i], folder[i+1:]...)
				break
			}
		}
	}
	b.mu.Unlock()

	if failing {
		writeJSON(w, status, map[string]any{"error": "move failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "new_path": req.Body["base_folder"] + "/" + req.Body["genre"]})
}

func (b *Backend) handleAddGenre(w http.ResponseWriter, r *http.Request) {
	req := b.record(r)
	genre := req.Body["genre"]

	b.mu.Lock()
	status := b.addStatus
	if status < http.StatusBadRequest && genre != "" {
		known := false
		for _, g := range b.genres {
			if g == genre {
				known = true
				break
			}
		}
		if !known {
			b.genres = append(b.genres, genre)
		}
	}
	b.mu.Unlock()

	switch {
	case genre == "":
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "No genre provided"})
	case status >= http.StatusBadRequest:
		writeJSON(w, status, map[string]any{"error": "add failed"})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func (b *Backend) handleSuggest(w http.ResponseWriter, r *http.Request) {
	req := b.record(r)

	b.mu.Lock()
	reply, ok := b.suggestions[req.Body["title"]]
	b.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"genre": "Drama", "status": "success"})
		return
	}
	writeJSON(w, reply.Status, reply.Body)
}

func (b *Backend) handleMovies(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	folder := r.URL.Query().Get("selected_folder")
	if folder == "" {
		folder = DefaultFolder
	}

	b.mu.Lock()
	genres, _ := json.Marshal(b.genres)
	data := pageData{
		Folder: folder,
		Error:  b.pageError,
		Genres: string(genres),
		Movies: append([]Movie(nil), b.folders[folder]...),
	}
	b.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = pageTemplate.Execute(w, data)
}

// RenderPage renders the movies page markup for folder without a server.
func RenderPage(folder string, genres []string, movies ...Movie) string {
	encoded, _ := json.Marshal(genres)
	var sb strings.Builder
	_ = pageTemplate.Execute(&sb, pageData{Folder: folder, Genres: string(encoded), Movies: movies})
	return sb.String()
}

type pageData struct {
	Folder string
	Error  string
	Genres string
	Movies []Movie
}

var pageTemplate = template.Must(template.New("movies").Parse(`<!DOCTYPE html>
<html>
<head><title>Movies</title></head>
<body>
{{- if .Error}}
<div class="alert alert-danger">{{.Error}}</div>
{{- end}}
<table class="table" data-genres="{{.Genres}}" data-base-folder="{{.Folder}}">
<thead><tr>
<th onclick="sortTable(0)">Title</th>
<th onclick="sortTable(1)">Current Genre</th>
<th onclick="sortTable(2)">Suggested Genre</th>
<th onclick="sortTable(3)">Actions</th>
</tr></thead>
<tbody>
{{- range .Movies}}
<tr>
<td class="title-cell">{{.Title}}</td>
<td class="current-genre">{{.CurrentGenre}}</td>
<td class="suggestion-cell"><div class="suggestion-container">
{{- if .SuggestedGenre}}<span class="me-2 text-truncate">{{.SuggestedGenre}}</span>{{end}}
<button type="button" class="btn btn-sm suggestion-button" data-path="{{.Path}}" data-base-folder="{{$.Folder}}">Suggest</button>
</div></td>
<td class="actions-cell">
{{- if .MoveGenre}}
<button type="button" class="btn btn-success btn-sm move-button" data-path="{{.Path}}" data-base-folder="{{$.Folder}}" data-genre="{{.MoveGenre}}">
<span class="button-text">Move to {{.MoveGenre}}</span>
<div class="spinner-border spinner-border-sm d-none" role="status"><span class="visually-hidden">Moving...</span></div>
<span class="retry-text d-none">Try again</span>
</button>
{{- end}}
</td>
</tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))
