package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
)

func TestSink_AppendRow(t *testing.T) {
	mr := miniredis.RunT(t)

	sink, err := Open(context.Background(), Options{Addr: mr.Addr(), Key: "diagnostic:submissions"})
	require.NoError(t, err)
	defer sink.Close()

	row := domain.SubmissionRow{
		ID:             "id-1",
		CatalogKey:     "digital-transformation",
		SubmittedAt:    time.Date(2024, 4, 5, 6, 7, 8, 0, time.UTC),
		Score:          60,
		Recommendation: "excellent",
		FollowUp:       "advanced",
	}
	require.NoError(t, sink.AppendRow(context.Background(), row))
	require.NoError(t, sink.AppendRow(context.Background(), row))

	items, err := mr.List("diagnostic:submissions")
	require.NoError(t, err)
	require.Len(t, items, 2)

	var got domain.SubmissionRow
	require.NoError(t, json.Unmarshal([]byte(items[0]), &got))
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, 60, got.Score)
	assert.Equal(t, "advanced", got.FollowUp)
	assert.True(t, row.SubmittedAt.Equal(got.SubmittedAt))
}

func TestSink_AppendRow_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)

	sink, err := Open(context.Background(), Options{Addr: mr.Addr(), Key: "rows"})
	require.NoError(t, err)
	defer sink.Close()

	mr.Close()

	err = sink.AppendRow(context.Background(), domain.SubmissionRow{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpush rows")
}

func TestOpen_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Open(context.Background(), Options{Addr: addr, Key: "rows"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}
