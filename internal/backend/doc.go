// Package backend is the HTTP client for the movie organizer web backend.
//
// The backend owns every file-system operation; this client only speaks its
// fixed JSON shapes:
//
//	POST /move_movie    {path, movie_path, base_folder, genre} -> {success, new_path} | {error}
//	POST /add_genre     {genre}                                -> {success} | {error}
//	POST /suggest_genre {title, base_folder}                   -> {genre, status, message} | {error}
//	GET  /movies?selected_folder=...                           -> HTML page
//
// Every request carries an X-Request-ID header. Non-2xx replies surface as
// *StatusError so callers can tell a rejected request from a transport failure.
package backend
