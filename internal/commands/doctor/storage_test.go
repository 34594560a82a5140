package doctor

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/stride/internal/core/blob"
	"github.com/hay-kot/stride/internal/tracker"
)

const oneRun = `[{"type":"run","id":3,"date":"2026-10-15T07:45:00Z","coords":[10,20],"distance":5,"duration":25,"cadence":180}]`

func seed(t *testing.T, workouts, ids string) *blob.Memory {
	t.Helper()
	ctx := context.Background()
	m := blob.NewMemory()
	if workouts != "" {
		require.NoError(t, m.Set(ctx, tracker.KeyWorkouts, workouts))
	}
	if ids != "" {
		require.NoError(t, m.Set(ctx, tracker.KeyIDs, ids))
	}
	return m
}

func statuses(r Result) []Status {
	out := make([]Status, len(r.Items))
	for i, item := range r.Items {
		out[i] = item.Status
	}
	return out
}

func TestStorageCheck_Empty(t *testing.T) {
	check := NewStorageCheck(blob.NewMemory(), "stride.json", false)
	result := check.Run(context.Background())

	assert.Equal(t, "Storage", result.Name)
	assert.Equal(t, []Status{StatusPass, StatusPass}, statuses(result))
	assert.Equal(t, "not written yet", result.Items[0].Detail)
}

func TestStorageCheck_Healthy(t *testing.T) {
	check := NewStorageCheck(seed(t, oneRun, "[3]"), "stride.json", false)
	result := check.Run(context.Background())

	require.Len(t, result.Items, 4)
	for _, item := range result.Items {
		assert.Equal(t, StatusPass, item.Status, item.Label)
	}
	assert.Equal(t, "1 activities, 1 ids", result.Items[2].Detail)
}

func TestStorageCheck_OneKeyMissing(t *testing.T) {
	check := NewStorageCheck(seed(t, oneRun, ""), "stride.json", false)
	result := check.Run(context.Background())

	require.Len(t, result.Items, 3)
	assert.Equal(t, StatusWarn, result.Items[2].Status)
}

func TestStorageCheck_Undecodable(t *testing.T) {
	check := NewStorageCheck(seed(t, "{not json", "[3]"), "stride.json", false)
	result := check.Run(context.Background())

	last := result.Items[len(result.Items)-1]
	assert.Equal(t, "Decode", last.Label)
	assert.Equal(t, StatusFail, last.Status)
}

func TestStorageCheck_InvalidRecord(t *testing.T) {
	bad := `[{"type":"run","id":3,"date":"2026-10-15T07:45:00Z","coords":[10,20],"distance":0,"duration":25,"cadence":180}]`
	check := NewStorageCheck(seed(t, bad, "[3]"), "stride.json", false)
	result := check.Run(context.Background())

	last := result.Items[len(result.Items)-1]
	assert.Equal(t, StatusFail, last.Status)
	assert.Contains(t, last.Detail, "record 0")
}

func TestStorageCheck_MissingIDReported(t *testing.T) {
	blobs := seed(t, oneRun, "[1]")
	check := NewStorageCheck(blobs, "stride.json", false)
	result := check.Run(context.Background())

	last := result.Items[len(result.Items)-1]
	assert.Equal(t, StatusWarn, last.Status)
	assert.True(t, last.Fixable)
	assert.Contains(t, last.Detail, "3")
	assert.Equal(t, 1, CountFixable([]Result{result}))

	raw, err := blobs.Get(context.Background(), tracker.KeyIDs)
	require.NoError(t, err)
	assert.Equal(t, "[1]", raw, "report mode must not write")
}

func TestStorageCheck_MissingIDFixed(t *testing.T) {
	blobs := seed(t, oneRun, "[1]")
	check := NewStorageCheck(blobs, "stride.json", true)
	result := check.Run(context.Background())

	last := result.Items[len(result.Items)-1]
	assert.Equal(t, StatusPass, last.Status)
	assert.Contains(t, last.Detail, "repaired")

	raw, err := blobs.Get(context.Background(), tracker.KeyIDs)
	require.NoError(t, err)
	assert.JSONEq(t, "[1,3]", raw)
}

func TestStorageCheck_NilStore(t *testing.T) {
	result := NewStorageCheck(nil, "", false).Run(context.Background())

	assert.Equal(t, []Status{StatusFail}, statuses(result))
}

func TestResult_JSONStatus(t *testing.T) {
	results := RunAll(context.Background(), []Check{NewStorageCheck(nil, "", false)})

	data, err := json.Marshal(results)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"fail"`)

	passed, warned, failed := Summary(results)
	assert.Equal(t, [3]int{0, 0, 1}, [3]int{passed, warned, failed})
}
