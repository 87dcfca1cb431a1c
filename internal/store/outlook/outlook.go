// Package outlook implements the store contract against the desktop
// Outlook application over COM automation. It is the real backend: the
// session wraps a live MAPI namespace, folders and items are COM objects,
// and the restriction predicate is handed to Outlook verbatim. Only built
// on Windows; elsewhere Open reports the store as unavailable.
package outlook

// olFolderCalendar is Outlook's well-known identifier for the default
// calendar folder (OlDefaultFolders.olFolderCalendar).
const olFolderCalendar = 9

// Store dispatches sessions against the local Outlook installation.
type Store struct{}

// New creates an Outlook-backed store.
func New() *Store {
	return &Store{}
}
