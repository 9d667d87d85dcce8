package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque serialized payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// DeviceRepository defines the interface for device catalog lookups
type DeviceRepository interface {
	GetBySlug(ctx context.Context, slug string) (*Device, error)
	GetSpecs(ctx context.Context, deviceID int64) ([]Spec, error)
	SearchByName(ctx context.Context, query string, limit int) ([]Device, error)
}

// DeviceWriter persists catalog entries (used by the seed command)
type DeviceWriter interface {
	UpsertDevice(ctx context.Context, device *Device, specs []Spec) error
}

// TextGenerator produces natural-language text from a prompt
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
