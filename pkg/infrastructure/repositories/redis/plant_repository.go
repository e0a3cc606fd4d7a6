package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
	"github.com/vsinha/pluanalyzer/pkg/domain/repositories"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/repositories/kv"
)

// PlantRepository shares plant data between instances through redis
type PlantRepository struct {
	client *goredis.Client
}

// Verify interface compliance
var _ repositories.PlantRepository = (*PlantRepository)(nil)

// NewPlantRepository creates a repository on an existing client
func NewPlantRepository(client *goredis.Client) *PlantRepository {
	return &PlantRepository{client: client}
}

// Connect creates a client and checks that the server answers
func Connect(ctx context.Context, addr, password string, db int) (*PlantRepository, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return NewPlantRepository(client), nil
}

// Save writes both plant values atomically
func (r *PlantRepository) Save(ctx context.Context, snapshot entities.PlantSnapshot) error {
	values, err := kv.Encode(snapshot)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, key := range kv.Keys() {
			pipe.Set(ctx, key, values[key], 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save plant data: %w", err)
	}
	return nil
}

// Load returns the stored plant data or ErrPlantDataNotFound
func (r *PlantRepository) Load(ctx context.Context) (*entities.PlantSnapshot, error) {
	keys := kv.Keys()
	cmds := make([]*goredis.StringCmd, len(keys))

	_, err := r.client.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.Get(ctx, key)
		}
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("failed to load plant data: %w", err)
	}

	values := make(map[string][]byte, len(keys))
	for i, cmd := range cmds {
		b, err := cmd.Bytes()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", keys[i], err)
		}
		values[keys[i]] = b
	}
	return kv.Decode(values[repositories.PlantDataKey], values[repositories.PlantMetadataKey])
}

// Clear removes the stored plant data
func (r *PlantRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, kv.Keys()...).Err(); err != nil {
		return fmt.Errorf("failed to clear plant data: %w", err)
	}
	return nil
}

// Close releases the client
func (r *PlantRepository) Close() error {
	return r.client.Close()
}
