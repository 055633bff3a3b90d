package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// DocumentKeyOpts holds the layout parameters that distinguish documents
// produced from the same source.
type DocumentKeyOpts struct {
	Mode   string  `json:"mode"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Ratio  float64 `json:"ratio,omitempty"`
}

// DocumentKey returns the store key for a TMAP document built from a source
// whose content hash is sourceHash.
func DocumentKey(sourceHash string, opts DocumentKeyOpts) string {
	return hashKey("tmap", sourceHash, opts)
}
