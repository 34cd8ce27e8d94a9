package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service is the key/value surface the analysis cache and the rate limiter
// need. Values are JSON encoded unless they are strings or []byte.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)
	Close() error
}

func encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return append([]byte(nil), v...), nil
	default:
		return json.Marshal(value)
	}
}

func decode(data []byte, dest interface{}) error {
	switch d := dest.(type) {
	case *string:
		*d = string(data)
		return nil
	case *[]byte:
		*d = append([]byte(nil), data...)
		return nil
	default:
		return json.Unmarshal(data, dest)
	}
}

// Nop never stores anything; every Get is a miss.
type Nop struct{}

func (Nop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (Nop) Get(context.Context, string, interface{}) error               { return ErrCacheMiss }
func (Nop) Delete(context.Context, ...string) error                      { return nil }
func (Nop) Exists(context.Context, ...string) (bool, error)              { return false, nil }
func (Nop) Increment(context.Context, string) (int64, error)             { return 0, nil }
func (Nop) Expire(context.Context, string, time.Duration) (bool, error)  { return false, nil }
func (Nop) Close() error                                                 { return nil }
