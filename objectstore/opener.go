// Package objectstore selects the object storage driver used to open
// per-user buckets.
package objectstore

import (
	"fmt"

	"github.com/sagarc03/s3manager"
	"github.com/sagarc03/s3manager/objectstore/awss3"
	"github.com/sagarc03/s3manager/objectstore/miniostore"
)

const (
	DriverAWS   = "aws"
	DriverMinio = "minio"
)

// Options holds the storage settings shared by every user.
type Options struct {
	Driver       string
	Endpoint     string
	UsePathStyle bool
}

// NewOpener returns the Opener for opts.Driver. An empty driver means aws.
func NewOpener(opts Options) (s3manager.Opener, error) {
	switch opts.Driver {
	case "", DriverAWS:
		return awss3.Opener(awss3.Options{
			Endpoint:     opts.Endpoint,
			UsePathStyle: opts.UsePathStyle,
		}), nil
	case DriverMinio:
		return miniostore.Opener(miniostore.Options{
			Endpoint:     opts.Endpoint,
			UsePathStyle: opts.UsePathStyle,
		}), nil
	default:
		return nil, fmt.Errorf("new opener: unsupported storage driver: %s", opts.Driver)
	}
}
