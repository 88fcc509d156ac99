package storageutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/pierrec/lz4/v4"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// ErrObjectNotFound indicates an object was not found.
var ErrObjectNotFound = errors.New("object not found")

const defaultTimeout = 5 * time.Second

// CompressedWrite encodes d as JSON, compresses it and writes it to the bucket.
func CompressedWrite(ctx context.Context, b *blob.Bucket, objectName string, d interface{}) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(d); err != nil {
		return err
	}
	return Write(ctx, b, objectName, buf.Bytes(), true)
}

// Write writes data to the bucket, lz4 compressed if compress is set.
func Write(ctx context.Context, b *blob.Bucket, objectName string, data []byte, compress bool) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ow, err := b.NewWriter(ctx, objectName, nil)
	if err != nil {
		return err
	}
	var w io.Writer = ow
	var zw *lz4.Writer
	if compress {
		zw = lz4.NewWriter(ow)
		_ = zw.Apply(lz4.CompressionLevelOption(lz4.Level9))
		w = zw
	}
	_, err = w.Write(data)
	if err != nil {
		_ = ow.Close()
		return err
	}
	if zw != nil {
		err = zw.Close()
		if err != nil {
			_ = ow.Close()
			return err
		}
	}
	return ow.Close()
}

// UnmarshalCompressed reads compressed JSON data from the bucket and unmarshals it.
func UnmarshalCompressed(ctx context.Context, b *blob.Bucket, objectName string, d interface{}) error {
	return unmarshal(ctx, b, objectName, d, true)
}

// Unmarshal reads JSON data from the bucket and unmarshals it.
func Unmarshal(ctx context.Context, b *blob.Bucket, objectName string, d interface{}) error {
	return unmarshal(ctx, b, objectName, d, false)
}

func unmarshal(ctx context.Context, b *blob.Bucket, objectName string, d interface{}, compressed bool) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	or, err := b.NewReader(ctx, objectName, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return ErrObjectNotFound
		}
		return err
	}
	defer or.Close()
	var r io.Reader = or
	if compressed {
		r = lz4.NewReader(or)
	}
	return json.NewDecoder(r).Decode(d)
}
