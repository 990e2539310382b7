package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	automaton "github.com/geange/automata"
	"github.com/geange/automata/internal/store"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix is prepended to the list keys unless WithPrefix says otherwise.
const DefaultPrefix = "automata:log:"

// Store implements store.Log using one Redis list per kind. RPUSH hands out indices
// atomically, so several processes can share a log.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix of the lists.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(kind automaton.Kind) string {
	return s.prefix + store.CollectionName(kind)
}

func (s *Store) Append(ctx context.Context, def automaton.Definition) (int, error) {
	if err := store.CheckKind(def.Kind); err != nil {
		return 0, err
	}
	data, err := json.Marshal(def)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal definition: %w", err)
	}
	n, err := s.client.RPush(ctx, s.key(def.Kind), data).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to append to redis: %w", err)
	}
	return int(n) - 1, nil
}

func (s *Store) Get(ctx context.Context, kind automaton.Kind, index int) (automaton.Definition, error) {
	if err := store.CheckKind(kind); err != nil {
		return automaton.Definition{}, err
	}
	if index < 0 {
		return automaton.Definition{}, s.notFound(ctx, kind, index)
	}
	val, err := s.client.LIndex(ctx, s.key(kind), int64(index)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return automaton.Definition{}, s.notFound(ctx, kind, index)
		}
		return automaton.Definition{}, fmt.Errorf("failed to get from redis: %w", err)
	}
	return decode(kind, val)
}

func (s *Store) notFound(ctx context.Context, kind automaton.Kind, index int) error {
	n, err := s.Len(ctx, kind)
	if err != nil {
		return err
	}
	return store.NotFound(kind, index, n)
}

func (s *Store) List(ctx context.Context, kind automaton.Kind) ([]automaton.Definition, error) {
	if err := store.CheckKind(kind); err != nil {
		return nil, err
	}
	vals, err := s.client.LRange(ctx, s.key(kind), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list from redis: %w", err)
	}
	defs := make([]automaton.Definition, 0, len(vals))
	for _, val := range vals {
		def, err := decode(kind, val)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (s *Store) Len(ctx context.Context, kind automaton.Kind) (int, error) {
	if err := store.CheckKind(kind); err != nil {
		return 0, err
	}
	n, err := s.client.LLen(ctx, s.key(kind)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to measure redis list: %w", err)
	}
	return int(n), nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

func decode(kind automaton.Kind, val string) (automaton.Definition, error) {
	var def automaton.Definition
	if err := json.Unmarshal([]byte(val), &def); err != nil {
		return def, fmt.Errorf("failed to unmarshal definition: %w", err)
	}
	def.Kind = kind
	return def, nil
}
