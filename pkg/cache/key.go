package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every cache key in Redis.
const KeyPrefix = "paynow"

// Key identifies a cached gateway response.
type Key struct {
	// Endpoint is the gateway path, e.g. "/payments"
	Endpoint string

	// QueryParams are the query parameters, e.g. page and size
	QueryParams url.Values
}

// String generates a deterministic cache key string.
//
// Example:
//
//	paynow:payments:page=0:size=10
func (k Key) String() string {
	parts := []string{endpointPrefix(k.Endpoint)}

	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}

// endpointPrefix is the part of a key shared by every query of one endpoint.
func endpointPrefix(endpoint string) string {
	endpoint = strings.Trim(endpoint, "/")
	if endpoint == "" {
		return KeyPrefix
	}
	return KeyPrefix + ":" + endpoint
}
