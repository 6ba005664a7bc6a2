package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	bucketData = "media"
	bucketMeta = "media_meta"
)

// BoltStore keeps blobs in a local bbolt file: data in one bucket and the
// content type under the same key in another.
type BoltStore struct {
	db *bolt.DB
}

func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketData, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Put(ctx context.Context, name, contentType string, r io.Reader) (int64, error) {
	_, span := tracer.Start(ctx, "BoltStore.Put")
	defer span.End()

	data, err := io.ReadAll(r)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("read upload: %w", err)
	}
	span.SetAttributes(attribute.String("media.name", name), attribute.Int("media.size", len(data)))

	err = s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(bucketData)).Put([]byte(name), data); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketMeta)).Put([]byte(name), []byte(contentType))
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("put %s: %w", name, err)
	}
	return int64(len(data)), nil
}

func (s *BoltStore) Get(ctx context.Context, name string) (Object, error) {
	_, span := tracer.Start(ctx, "BoltStore.Get")
	defer span.End()

	var obj Object
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketData)).Get([]byte(name))
		if data == nil {
			return ErrNotFound
		}
		// bbolt values are only valid inside the transaction.
		buf := bytes.Clone(data)
		obj = Object{
			Body:        io.NopCloser(bytes.NewReader(buf)),
			ContentType: string(tx.Bucket([]byte(bucketMeta)).Get([]byte(name))),
			Size:        int64(len(buf)),
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return Object{}, err
	}
	return obj, nil
}

func (s *BoltStore) Delete(ctx context.Context, name string) error {
	_, span := tracer.Start(ctx, "BoltStore.Delete")
	defer span.End()

	return s.db.Update(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketData))
		if data.Get([]byte(name)) == nil {
			return ErrNotFound
		}
		if err := data.Delete([]byte(name)); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketMeta)).Delete([]byte(name))
	})
}

func (s *BoltStore) Close(context.Context) error {
	return s.db.Close()
}
