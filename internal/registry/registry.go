package registry

import (
	"strings"
	"sync"

	"github.com/orbit-drive/orbit/internal/constants"
	"github.com/orbit-drive/orbit/internal/events"
	"github.com/orbit-drive/orbit/internal/models"
)

// Registry is an observable, folder-partitioned listing container.
// Thread-safe for concurrent access.
type Registry struct {
	eventBus *events.EventBus

	partitions map[string][]models.FileEntry
	active     string

	mu sync.RWMutex
}

// New creates an empty Registry with the root partition active.
func New(eventBus *events.EventBus) *Registry {
	return &Registry{
		eventBus:   eventBus,
		partitions: make(map[string][]models.FileEntry),
		active:     constants.RootFolderID,
	}
}

// List returns the active partition's entries whose name contains filter,
// case-insensitively. An empty filter returns every entry in insertion order.
func (r *Registry) List(filter string) []models.FileEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return filterEntries(r.partitions[r.active], filter)
}

// Insert prepends entry to the active partition. Newest entries come first.
// An entry without a kind is classified from its type string.
func (r *Registry) Insert(entry models.FileEntry) {
	r.mu.RLock()
	folderID := r.active
	r.mu.RUnlock()

	r.InsertInto(folderID, entry)
}

// InsertInto prepends entry to the partition for folderID, which need not be
// active. A change event is published only for the active partition.
func (r *Registry) InsertInto(folderID string, entry models.FileEntry) {
	if entry.Kind == "" {
		entry.Kind = Classify(entry.MimeType)
	}

	r.mu.Lock()
	current := r.partitions[folderID]
	next := make([]models.FileEntry, 0, len(current)+1)
	next = append(next, entry)
	next = append(next, current...)
	r.partitions[folderID] = next
	isActive, count := folderID == r.active, len(next)
	r.mu.Unlock()

	if isActive {
		r.publish(folderID, count, ReasonInsert)
	}
}

// Entries returns a copy of the active partition.
func (r *Registry) Entries() []models.FileEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	current := r.partitions[r.active]
	out := make([]models.FileEntry, len(current))
	copy(out, current)
	return out
}

// Load replaces the entries of one partition. The active partition is unchanged.
func (r *Registry) Load(folderID string, entries []models.FileEntry) {
	items := make([]models.FileEntry, len(entries))
	copy(items, entries)
	for i := range items {
		if items[i].Kind == "" {
			items[i].Kind = Classify(items[i].MimeType)
		}
	}

	r.mu.Lock()
	r.partitions[folderID] = items
	isActive := folderID == r.active
	r.mu.Unlock()

	if isActive {
		r.publish(folderID, len(items), ReasonLoad)
	}
}

// SetActive switches the partition that List, Insert and FindByID operate on.
func (r *Registry) SetActive(folderID string) {
	r.mu.Lock()
	if r.active == folderID {
		r.mu.Unlock()
		return
	}
	r.active = folderID
	count := len(r.partitions[folderID])
	r.mu.Unlock()

	r.publish(folderID, count, ReasonActivate)
}

// ActiveFolder returns the id of the active partition.
func (r *Registry) ActiveFolder() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// HasPartition reports whether folderID has been loaded.
func (r *Registry) HasPartition(folderID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.partitions[folderID]
	return ok
}

// FindByID looks up an entry in the active partition.
func (r *Registry) FindByID(id string) (models.FileEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.partitions[r.active] {
		if e.ID == id {
			return e, true
		}
	}
	return models.FileEntry{}, false
}

// Count returns the number of entries in the active partition.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.partitions[r.active])
}

// Clear empties every partition and resets the active partition to root.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.partitions = make(map[string][]models.FileEntry)
	r.active = constants.RootFolderID
	r.mu.Unlock()

	r.publish(constants.RootFolderID, 0, ReasonClear)
}

func (r *Registry) publish(folderID string, count int, reason string) {
	if r.eventBus != nil {
		r.eventBus.Publish(NewFileListChangedEvent(folderID, count, reason))
	}
}

// Filter applies the same case-insensitive name match as List to an arbitrary slice.
func Filter(entries []models.FileEntry, filter string) []models.FileEntry {
	return filterEntries(entries, filter)
}

func filterEntries(entries []models.FileEntry, filter string) []models.FileEntry {
	needle := strings.ToLower(filter)
	result := make([]models.FileEntry, 0, len(entries))
	for _, e := range entries {
		if needle == "" || strings.Contains(strings.ToLower(e.Name), needle) {
			result = append(result, e)
		}
	}
	return result
}
