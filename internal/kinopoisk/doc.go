// Package kinopoisk provides an HTTP client for the Kinopoisk catalogue API.
//
// # Overview
//
// The client covers the two read-only endpoints marquee needs:
//
//   - GET /api/v2.2/films/top?type=TOP_100_POPULAR_FILMS&page=N: the featured list
//   - GET /api/v2.2/films/{id}: full details for one film
//
// Responses decode into the structs in types.go. Requests carry the API key in the
// X-API-KEY header, use the caller's context for cancellation, and are bounded by
// the client timeout.
//
// # Errors
//
// Non-2xx responses return *APIError. A 404 additionally matches ErrNotFound via
// errors.Is. Transport and decode failures are wrapped with %w.
//
// # Usage
//
//	client, err := kinopoisk.NewClient("", os.Getenv("MARQUEE_API_KEY"), 0)
//	if err != nil {
//		return err
//	}
//	film, err := client.FetchFilm(ctx, 301)
package kinopoisk
