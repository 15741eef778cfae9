// internal/cache/keys.go
package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Key builds a deterministic cache key from an operation name and its
// parameters. Parameters are sorted by name before hashing so the same
// parameter set always maps to the same key regardless of call-site order.
func Key(operation string, params map[string]interface{}) string {
	if len(params) == 0 {
		return operation
	}

	parts := make([]string, 0, len(params))
	for name, value := range params {
		parts = append(parts, fmt.Sprintf("%s=%v", name, value))
	}
	sort.Strings(parts)

	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return operation + ":" + hex.EncodeToString(sum[:])
}
