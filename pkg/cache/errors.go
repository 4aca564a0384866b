package cache

import "errors"

var (
	ErrFailedToParseConnString = errors.New("cache: failed to parse redis connection string")
	ErrRedisNotReady           = errors.New("cache: redis did not become ready within the given time period")
	ErrInvalidKey              = errors.New("cache: key must not be empty")
)
