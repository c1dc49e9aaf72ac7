// Package redis pushes submission rows onto a Redis list.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// Sink は JSON エンコードした行をリスト末尾へ RPUSH する。
type Sink struct {
	client *redis.Client
	key    string
}

// Open は Redis クライアントを作成し、疎通確認を行う。
func Open(ctx context.Context, opts Options) (*Sink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	sink := New(client, opts.Key)
	if err := sink.Ping(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return sink, nil
}

// New は既存クライアントから Sink を構築する。
func New(client *redis.Client, key string) *Sink {
	return &Sink{client: client, key: key}
}

// AppendRow は行を JSON でリストへ追加する。
func (s *Sink) AppendRow(ctx context.Context, row domain.SubmissionRow) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("redis: encode row: %w", err)
	}
	if err := s.client.RPush(ctx, s.key, payload).Err(); err != nil {
		return fmt.Errorf("redis: rpush %s: %w", s.key, err)
	}
	return nil
}

// Ping は Redis への疎通を確認する。
func (s *Sink) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close はクライアントを閉じる。
func (s *Sink) Close() error {
	return s.client.Close()
}
