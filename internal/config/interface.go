package config

import "context"

// Loader reads configuration from files or directories and translates it into
// the format-agnostic Model.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Model, error)
}
