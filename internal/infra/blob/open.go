// Package blob selects a blob storage backend from the environment.
package blob

import (
	"context"
	"fmt"
	"os"

	"plantcore/internal/infra/blob/core"
	"plantcore/internal/infra/blob/fs"
	"plantcore/internal/infra/blob/memory"
	"plantcore/internal/infra/blob/s3"
)

// Open constructs a blob store from environment variables. Defaults to the
// filesystem driver when unset.
//
//	PLANTCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	PLANTCORE_BLOB_FS_ROOT: root directory for the fs driver
//	PLANTCORE_BLOB_S3_*: see the s3 package
func Open(ctx context.Context) (core.Store, error) {
	driver := os.Getenv("PLANTCORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(core.DriverFilesystem)
	}
	switch core.Driver(driver) {
	case core.DriverFilesystem:
		return fs.New(os.Getenv("PLANTCORE_BLOB_FS_ROOT"))
	case core.DriverS3:
		return s3.OpenFromEnv(ctx)
	case core.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
