package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/stride/internal/core/blob"
	"github.com/hay-kot/stride/internal/core/identity"
	"github.com/hay-kot/stride/internal/tracker"
)

// StorageCheck inspects the persisted activity log without touching the
// running service.
type StorageCheck struct {
	blobs blob.Store
	path  string
	fix   bool
}

// NewStorageCheck creates a new storage check.
// If fix is true, activity ids missing from the id list are written back.
func NewStorageCheck(blobs blob.Store, path string, fix bool) *StorageCheck {
	return &StorageCheck{
		blobs: blobs,
		path:  path,
		fix:   fix,
	}
}

func (c *StorageCheck) Name() string {
	return "Storage"
}

func (c *StorageCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.blobs == nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Store opened",
			Status: StatusFail,
			Detail: "blob store not opened",
		})
		return result
	}

	present := 0
	for _, key := range []string{tracker.KeyWorkouts, tracker.KeyIDs} {
		_, err := c.blobs.Get(ctx, key)
		switch {
		case errors.Is(err, blob.ErrKeyNotFound):
			result.Items = append(result.Items, CheckItem{
				Label:  key,
				Status: StatusPass,
				Detail: "not written yet",
			})
		case err != nil:
			result.Items = append(result.Items, CheckItem{
				Label:  key,
				Status: StatusFail,
				Detail: err.Error(),
			})
			return result
		default:
			present++
			result.Items = append(result.Items, CheckItem{
				Label:  key,
				Status: StatusPass,
				Detail: c.path,
			})
		}
	}

	if present == 1 {
		result.Items = append(result.Items, CheckItem{
			Label:  "Keys",
			Status: StatusWarn,
			Detail: "only one of the two keys is stored; the log loads as empty",
		})
		return result
	}

	store := tracker.NewStore()
	ids := identity.New(identity.Options{})
	loaded := store.Load(ctx, c.blobs, ids)

	switch loaded.Status {
	case tracker.LoadEmpty:
		return result
	case tracker.LoadDegraded:
		result.Items = append(result.Items, CheckItem{
			Label:  "Decode",
			Status: StatusFail,
			Detail: loaded.Err.Error(),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "Decode",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d activities, %d ids", loaded.Activities, loaded.IDs),
	})

	missing, err := c.missingIDs(ctx, store)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Issued ids",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	if len(missing) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "Issued ids",
			Status: StatusPass,
			Detail: "every activity id is in the id list",
		})
		return result
	}

	detail := fmt.Sprintf("activity ids %s are missing from the id list", joinInts(missing))

	if !c.fix {
		result.Items = append(result.Items, CheckItem{
			Label:   "Issued ids",
			Status:  StatusWarn,
			Detail:  detail,
			Fixable: true,
		})
		return result
	}

	// Load already reserved the missing ids, so saving writes them back.
	if err := store.Save(ctx, c.blobs, ids); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Issued ids",
			Status: StatusFail,
			Detail: fmt.Sprintf("failed to repair: %v", err),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "Issued ids",
		Status: StatusPass,
		Detail: fmt.Sprintf("repaired: added %s to the id list", joinInts(missing)),
	})
	return result
}

// missingIDs returns activity ids absent from the raw persisted id list.
func (c *StorageCheck) missingIDs(ctx context.Context, store *tracker.Store) ([]int, error) {
	raw, err := c.blobs.Get(ctx, tracker.KeyIDs)
	if err != nil {
		return nil, err
	}

	var issued []int
	if err := json.Unmarshal([]byte(raw), &issued); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", tracker.ErrDecode, tracker.KeyIDs, err)
	}

	set := make(map[int]bool, len(issued))
	for _, id := range issued {
		set[id] = true
	}

	var missing []int
	for _, a := range store.All() {
		if !set[a.ID] {
			missing = append(missing, a.ID)
		}
	}
	return missing, nil
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
