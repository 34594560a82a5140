package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/stride/internal/core/activity"
	"github.com/hay-kot/stride/internal/core/blob"
	"github.com/hay-kot/stride/internal/core/identity"
)

// Blob keys. Both must be present and decode for a load to succeed.
const (
	KeyWorkouts = "workouts"
	KeyIDs      = "ids"
)

// ErrDecode marks a persisted blob that could not be turned back into activities.
var ErrDecode = errors.New("decode persisted activities")

// LoadStatus describes the outcome of Store.Load.
type LoadStatus string

const (
	LoadLoaded   LoadStatus = "loaded"
	LoadEmpty    LoadStatus = "empty"
	LoadDegraded LoadStatus = "degraded"
)

// LoadResult reports what Load did. Err is set only when Status is LoadDegraded.
type LoadResult struct {
	Status     LoadStatus
	Activities int
	IDs        int
	Err        error
}

// Store is the ordered, in-memory collection of activities. Insertion order
// is display order; lookups are linear.
type Store struct {
	activities []activity.Activity
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Add appends a.
func (s *Store) Add(a activity.Activity) {
	s.activities = append(s.activities, a)
}

// All returns a copy of the activities in insertion order.
func (s *Store) All() []activity.Activity {
	out := make([]activity.Activity, len(s.activities))
	copy(out, s.activities)
	return out
}

// Len returns the number of activities.
func (s *Store) Len() int {
	return len(s.activities)
}

// FindByID returns the activity with id or activity.ErrNotFound.
func (s *Store) FindByID(id int) (activity.Activity, error) {
	for _, a := range s.activities {
		if a.ID == id {
			return a, nil
		}
	}
	return activity.Activity{}, activity.ErrNotFound
}

// Near returns activities within radiusKm of loc, in insertion order.
func (s *Store) Near(loc activity.Location, radiusKm float64) []activity.Activity {
	var out []activity.Activity
	for _, a := range s.activities {
		if a.Location.DistanceKm(loc) <= radiusKm {
			out = append(out, a)
		}
	}
	return out
}

// Reset drops every activity.
func (s *Store) Reset() {
	s.activities = nil
}

// Save writes every activity and the allocator's issued ids to blobs.
func (s *Store) Save(ctx context.Context, blobs blob.Store, ids *identity.Allocator) error {
	records := make([]activity.Record, 0, len(s.activities))
	for _, a := range s.activities {
		records = append(records, activity.ToRecord(a))
	}

	workouts, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", KeyWorkouts, err)
	}

	issued, err := json.Marshal(ids.Issued())
	if err != nil {
		return fmt.Errorf("marshal %s: %w", KeyIDs, err)
	}

	if err := blobs.Set(ctx, KeyWorkouts, string(workouts)); err != nil {
		return fmt.Errorf("write %s: %w", KeyWorkouts, err)
	}
	if err := blobs.Set(ctx, KeyIDs, string(issued)); err != nil {
		return fmt.Errorf("write %s: %w", KeyIDs, err)
	}

	return nil
}

// Load replaces the store and the allocator's issued set with the persisted
// state. If either key is absent, or anything fails to read or decode, both
// are left empty; the returned result says which case applied. Load never
// fails.
func (s *Store) Load(ctx context.Context, blobs blob.Store, ids *identity.Allocator) LoadResult {
	s.Reset()
	ids.Reset()

	workoutsRaw, workoutsOK, err := read(ctx, blobs, KeyWorkouts)
	if err != nil {
		return degraded(err)
	}
	idsRaw, idsOK, err := read(ctx, blobs, KeyIDs)
	if err != nil {
		return degraded(err)
	}
	if !workoutsOK || !idsOK {
		return LoadResult{Status: LoadEmpty}
	}

	var records []activity.Record
	if err := json.Unmarshal([]byte(workoutsRaw), &records); err != nil {
		return degraded(fmt.Errorf("%w: %s: %w", ErrDecode, KeyWorkouts, err))
	}

	var issued []int
	if err := json.Unmarshal([]byte(idsRaw), &issued); err != nil {
		return degraded(fmt.Errorf("%w: %s: %w", ErrDecode, KeyIDs, err))
	}

	restored := make([]activity.Activity, 0, len(records))
	seen := make(map[int]bool, len(records))
	for i, rec := range records {
		a, err := activity.FromRecord(rec)
		if err != nil {
			return degraded(fmt.Errorf("%w: record %d: %w", ErrDecode, i, err))
		}
		if seen[a.ID] {
			return degraded(fmt.Errorf("%w: duplicate activity id %d", ErrDecode, a.ID))
		}
		seen[a.ID] = true
		restored = append(restored, a)
	}

	s.activities = restored
	ids.Restore(issued)
	// An activity id missing from the id list must still never be reissued.
	for _, a := range restored {
		if !ids.IsIssued(a.ID) {
			ids.Reserve(a.ID)
		}
	}

	return LoadResult{
		Status:     LoadLoaded,
		Activities: len(restored),
		IDs:        ids.Len(),
	}
}

// read fetches key, treating a missing key or a JSON null as absent.
func read(ctx context.Context, blobs blob.Store, key string) (string, bool, error) {
	raw, err := blobs.Get(ctx, key)
	if errors.Is(err, blob.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return "", false, nil
	}
	return trimmed, true, nil
}

func degraded(err error) LoadResult {
	return LoadResult{Status: LoadDegraded, Err: err}
}
