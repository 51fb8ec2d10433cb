// Package state holds the featured film list shared between the background
// poller and the UI.
//
// The poller is the single writer: each refresh calls Update with the result
// of repository.Featured. The UI reads with Snapshot on its own schedule.
// Store uses a sync.RWMutex and copies the film slice on both sides, so a
// snapshot never aliases the stored data.
//
// Update semantics:
//
//	store.Update(list, nil)
//	→ snapshot.Films = list.Films
//	→ snapshot.LastError = nil, ConsecutiveFailures = 0
//
//	store.Update(cached, err)
//	→ snapshot.Films = <unchanged>, unless only cached films were held
//	→ snapshot.LastError = err, ConsecutiveFailures++
//
// The zero Store is ready to use.
package state
