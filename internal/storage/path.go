package storage

import (
	"path"
	"strings"
)

// PathConfig holds configuration for object key generation.
type PathConfig struct {
	// ShardLevels is the number of directory levels for sharding.
	// Default: 2 (e.g., ab/cd/abcdef...)
	ShardLevels int

	// ShardWidth is the number of characters per shard level.
	// Default: 2 (e.g., ab, cd)
	ShardWidth int
}

// DefaultPathConfig returns the default key configuration.
func DefaultPathConfig() PathConfig {
	return PathConfig{
		ShardLevels: 2,
		ShardWidth:  2,
	}
}

// ComputeKey generates the object key for a content hash and file extension.
// Keys always use forward slashes so they work as URL paths and S3 keys.
//
// Example with default config:
//
//	hash: "abcdef1234567890...", ext: ".png"
//	result: "ab/cd/abcdef1234567890....png"
func ComputeKey(config PathConfig, contentHash, ext string) string {
	name := contentHash + ext

	minLength := config.ShardLevels * config.ShardWidth
	if len(contentHash) < minLength {
		return name
	}

	components := make([]string, 0, config.ShardLevels+1)
	offset := 0
	for i := 0; i < config.ShardLevels; i++ {
		components = append(components, contentHash[offset:offset+config.ShardWidth])
		offset += config.ShardWidth
	}
	components = append(components, name)

	return path.Join(components...)
}

// ComputeDefaultKey generates the object key using default configuration.
func ComputeDefaultKey(contentHash, ext string) string {
	return ComputeKey(DefaultPathConfig(), contentHash, ext)
}

// ValidKey reports whether key is a relative, clean path without traversal.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	if path.Clean(key) != key {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." {
			return false
		}
	}
	return true
}

// JoinURL joins a public base and a key with exactly one slash.
func JoinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
