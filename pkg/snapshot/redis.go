package snapshot

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/taskweave/taskweave/pkg/errors"
	"github.com/taskweave/taskweave/pkg/graph"
)

// defaultRedisKey is the key holding the snapshot when no namespace is
// configured.
const defaultRedisKey = "taskweave:snapshot"

// RedisStore persists the snapshot as one JSON value in Redis.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to addr and stores the snapshot under key.
// An empty key uses the default namespace.
func NewRedisStore(addr, key string) *RedisStore {
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		key:    key,
	}
}

// Load reads the snapshot value. A missing key reports ok=false.
func (s *RedisStore) Load(ctx context.Context) (graph.GraphData, bool, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return graph.GraphData{}, false, nil
	}
	if err != nil {
		return graph.GraphData{}, false, errors.Wrap(errors.ErrCodeSnapshotStore, err, "redis get %s", s.key)
	}

	g, err := graph.UnmarshalGraphData(raw)
	if err != nil {
		return graph.GraphData{}, false, errors.Wrap(errors.ErrCodeSnapshotDecode, err, "decode redis snapshot")
	}
	return g, true, nil
}

// Save replaces the snapshot value. Snapshots do not expire.
func (s *RedisStore) Save(ctx context.Context, data graph.GraphData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotStore, err, "encode snapshot")
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotStore, err, "redis set %s", s.key)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
