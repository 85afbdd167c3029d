// Package history persists the most recently used warehouse connections.
package history

import (
	"fmt"
	"strings"
)

// StorageType identifies the storage backend of a warehouse.
type StorageType string

const (
	// StorageLocal is a warehouse on the local filesystem.
	StorageLocal StorageType = "LOCAL"
	// StorageS3 is a warehouse in an S3 compatible object store.
	StorageS3 StorageType = "S3"
)

// ParseStorageType converts the persisted type name to a StorageType.
func ParseStorageType(s string) (StorageType, error) {
	switch StorageType(strings.TrimSpace(s)) {
	case StorageLocal:
		return StorageLocal, nil
	case StorageS3:
		return StorageS3, nil
	default:
		return "", fmt.Errorf("unknown storage type: %q", s)
	}
}

// Option keys understood by the S3 storage backend.
const (
	OptionAccessKey       = "fs.s3a.access.key"
	OptionSecretKey       = "fs.s3a.secret.key"
	OptionEndpoint        = "fs.s3a.endpoint"
	OptionRegion          = "fs.s3a.endpoint.region"
	OptionPathStyleAccess = "fs.s3a.path.style.access"
	OptionImpl            = "fs.s3a.impl"
)

const s3aImpl = "org.apache.hadoop.fs.s3a.S3AFileSystem"

// StorageConfig describes how to reach a warehouse.
type StorageConfig struct {
	Type      StorageType
	Warehouse string
	Options   map[string]string
}

// NewLocal creates a configuration for a warehouse on the local filesystem.
func NewLocal(path string) StorageConfig {
	return StorageConfig{
		Type:      StorageLocal,
		Warehouse: path,
		Options:   map[string]string{},
	}
}

// NewS3 creates a configuration for an S3 warehouse. s3:// paths are
// rewritten to s3a://, and empty credentials, endpoint or region are omitted.
func NewS3(path, accessKey, secretKey, endpoint, region string) StorageConfig {
	if strings.HasPrefix(path, "s3://") {
		path = "s3a://" + strings.TrimPrefix(path, "s3://")
	}

	options := map[string]string{}
	if accessKey != "" {
		options[OptionAccessKey] = accessKey
	}
	if secretKey != "" {
		options[OptionSecretKey] = secretKey
	}
	if endpoint != "" {
		options[OptionEndpoint] = endpoint
	}
	if region != "" {
		options[OptionRegion] = region
	}
	options[OptionPathStyleAccess] = "true"
	options[OptionImpl] = s3aImpl

	return StorageConfig{
		Type:      StorageS3,
		Warehouse: path,
		Options:   options,
	}
}

// Option returns the option value for key, or "" when unset.
func (c StorageConfig) Option(key string) string {
	if c.Options == nil {
		return ""
	}
	return c.Options[key]
}

// SameAs reports whether two configurations point at the same warehouse with
// the same identity. For S3 the access key and endpoint are also compared.
func (c StorageConfig) SameAs(other StorageConfig) bool {
	if c.Type != other.Type || c.Warehouse != other.Warehouse {
		return false
	}
	if c.Type == StorageS3 {
		return c.Option(OptionAccessKey) == other.Option(OptionAccessKey) &&
			c.Option(OptionEndpoint) == other.Option(OptionEndpoint)
	}
	return true
}

// String never includes option values, which may hold secrets.
func (c StorageConfig) String() string {
	return fmt.Sprintf("StorageConfig{type=%s, warehouse='%s', options=%d entries}", c.Type, c.Warehouse, len(c.Options))
}

// FormatForDisplay renders an entry of the startup menu, e.g.
// "  2. S3: s3a://bucket/wh (endpoint: http://minio:9000)".
func FormatForDisplay(index int, c StorageConfig) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  %d. ", index)
	switch c.Type {
	case StorageLocal:
		sb.WriteString("Local: " + c.Warehouse)
	case StorageS3:
		sb.WriteString("S3: " + c.Warehouse)
		if endpoint := c.Option(OptionEndpoint); endpoint != "" {
			sb.WriteString(" (endpoint: " + endpoint + ")")
		}
	}
	return sb.String()
}
