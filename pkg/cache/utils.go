package cache

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// GenerateKey creates a cache key with prefix and ID.
func GenerateKey(prefix string, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// HashKey generates MD5 hash of a key.
func HashKey(key string) string {
	hasher := md5.New()
	hasher.Write([]byte(key))
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashParts hashes the JSON encoding of every part, each prefixed with its
// length, so neither element boundaries inside a part nor boundaries between
// parts can collide. Parts JSON cannot encode fall back to %#v.
func HashParts(parts ...interface{}) string {
	hasher := md5.New()
	var size [8]byte
	for _, p := range parts {
		b, err := json.Marshal(p)
		if err != nil {
			b = []byte(fmt.Sprintf("%#v", p))
		}
		binary.BigEndian.PutUint64(size[:], uint64(len(b)))
		hasher.Write(size[:])
		hasher.Write(b)
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
