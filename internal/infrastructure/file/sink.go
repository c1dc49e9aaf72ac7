// Package file appends submission rows to a local CSV file.
package file

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
)

// appendFile は *os.File のうち追記に使う部分。
type appendFile interface {
	io.Writer
	Stat() (os.FileInfo, error)
	Close() error
}

// Sink はファイル末尾へ CSV 行を追記する。ヘッダーは新規ファイル作成時のみ書き込む。
type Sink struct {
	mu   sync.Mutex
	path string
	open func(path string) (appendFile, error)
}

func openAppend(path string) (appendFile, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// Open は出力先ディレクトリを作成して Sink を返す。
func Open(path string) (*Sink, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("file sink: path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("file sink: create dir: %w", err)
		}
	}
	return &Sink{path: path, open: openAppend}, nil
}

// Path returns the target file.
func (s *Sink) Path() string {
	return s.path
}

// AppendRow は 1 行追記する。Close のエラーも書き込み失敗として返す。
func (s *Sink) AppendRow(ctx context.Context, row domain.SubmissionRow) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open(s.path)
	if err != nil {
		return fmt.Errorf("file sink: open %s: %w", s.path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("file sink: close %s: %w", s.path, cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("file sink: stat %s: %w", s.path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(domain.RowHeader); err != nil {
			return fmt.Errorf("file sink: write header: %w", err)
		}
	}
	if err := w.Write(row.Values()); err != nil {
		return fmt.Errorf("file sink: write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("file sink: flush: %w", err)
	}
	return nil
}
