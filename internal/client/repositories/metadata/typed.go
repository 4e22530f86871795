package metadata

import (
	"context"
	"strconv"
)

// GetString returns the value under key, or "" when absent.
func GetString(ctx context.Context, r Repository, key Key) (string, error) {
	v, err := r.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func SetString(ctx context.Context, r Repository, key Key, value string) error {
	return r.Set(ctx, key, []byte(value))
}

// GetBool returns the flag under key. Absent or unparsable values read as
// def.
func GetBool(ctx context.Context, r Repository, key Key, def bool) (bool, error) {
	v, err := r.Get(ctx, key)
	if err != nil {
		return def, err
	}
	if v == nil {
		return def, nil
	}
	b, err := strconv.ParseBool(string(v))
	if err != nil {
		return def, nil
	}
	return b, nil
}

func SetBool(ctx context.Context, r Repository, key Key, value bool) error {
	return r.Set(ctx, key, []byte(strconv.FormatBool(value)))
}
