package cache

import "strings"

const (
	GlobalKeyPrefix = "studysphere"
)

// GenerateCacheKey builds a cache key for a service, object type and
// identifier. Extra params are joined by "_" and appended as one segment.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}
