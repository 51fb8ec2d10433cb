// Package logtail reads the tail of marquee's JSON log file and turns the
// records into display lines for the logs view.
//
// Read extracts the last N lines with a ring buffer, so memory stays
// O(maxLines) however large the file grows. It returns nil, nil when the file
// does not exist yet.
//
// Parse decodes one zap JSON record into an Entry (time, level, message,
// caller and the remaining structured fields). Lines that are not JSON are
// kept verbatim in Entry.Raw, so a partially written line never breaks the
// view. Format renders an Entry as
//
//	14:32:15 WARN  film fetch failed  error=timeout film_id=42
//
// with fields sorted by key. Styling is left to the UI.
package logtail
