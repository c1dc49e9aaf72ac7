package file

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestSink_AppendRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "assessments.csv")
	sink, err := Open(path)
	require.NoError(t, err)

	row := domain.SubmissionRow{
		SubmittedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Name:           "Grace, Hopper",
		Score:          42,
		Recommendation: "Good progress.",
		FollowUp:       "Next steps.",
	}
	require.NoError(t, sink.AppendRow(context.Background(), row))
	require.NoError(t, sink.AppendRow(context.Background(), row))

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.RowHeader, rows[0])
	assert.Equal(t, "2024-01-02 03:04:05", rows[1][0])
	assert.Equal(t, "Grace, Hopper", rows[1][1])
	assert.Equal(t, "42", rows[1][domain.ScoreColumn])
	assert.Equal(t, rows[1], rows[2])
}

func TestSink_ExistingFileKeepsHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.AppendRow(context.Background(), domain.SubmissionRow{Score: 1}))

	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.AppendRow(context.Background(), domain.SubmissionRow{Score: 2}))

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "1", rows[1][domain.ScoreColumn])
	assert.Equal(t, "2", rows[2][domain.ScoreColumn])
}

func TestSink_ConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	sink, err := Open(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			assert.NoError(t, sink.AppendRow(context.Background(), domain.SubmissionRow{Score: score}))
		}(i)
	}
	wg.Wait()

	assert.Len(t, readRows(t, path), 21)
}

func TestSink_Errors(t *testing.T) {
	_, err := Open("   ")
	assert.Error(t, err)

	sink, err := Open(filepath.Join(t.TempDir(), "rows.csv"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sink.AppendRow(ctx, domain.SubmissionRow{}), context.Canceled)
}

type failingCloseFile struct {
	*os.File
}

func (f failingCloseFile) Close() error {
	_ = f.File.Close()
	return errors.New("disk quota exceeded")
}

func TestSink_CloseErrorIsReturned(t *testing.T) {
	sink, err := Open(filepath.Join(t.TempDir(), "rows.csv"))
	require.NoError(t, err)
	sink.open = func(path string) (appendFile, error) {
		f, err := openAppend(path)
		if err != nil {
			return nil, err
		}
		return failingCloseFile{File: f.(*os.File)}, nil
	}

	err = sink.AppendRow(context.Background(), domain.SubmissionRow{Score: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close")
	assert.Contains(t, err.Error(), "disk quota exceeded")
}
