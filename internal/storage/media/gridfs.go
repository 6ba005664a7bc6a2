package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// GridFSStore keeps blobs in a MongoDB GridFS bucket named "media". The
// content type travels in the file metadata.
type GridFSStore struct {
	client *mongo.Client
	bucket *mongo.GridFSBucket
}

func OpenGridFS(ctx context.Context, uri, database string) (*GridFSStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	bucket := client.Database(database).GridFSBucket(options.GridFSBucket().SetName("media"))
	return &GridFSStore{client: client, bucket: bucket}, nil
}

func (s *GridFSStore) Put(ctx context.Context, name, contentType string, r io.Reader) (int64, error) {
	ctx, span := tracer.Start(ctx, "GridFSStore.Put")
	defer span.End()
	span.SetAttributes(attribute.String("media.name", name))

	cr := &countingReader{r: r}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	if _, err := s.bucket.UploadFromStream(ctx, name, cr, opts); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("upload %s: %w", name, err)
	}
	return cr.n, nil
}

func (s *GridFSStore) Get(ctx context.Context, name string) (Object, error) {
	ctx, span := tracer.Start(ctx, "GridFSStore.Get")
	defer span.End()

	stream, err := s.bucket.OpenDownloadStreamByName(ctx, name)
	if errors.Is(err, mongo.ErrFileNotFound) {
		return Object{}, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return Object{}, fmt.Errorf("open %s: %w", name, err)
	}

	file := stream.GetFile()
	obj := Object{Body: stream, Size: file.Length}
	if file.Metadata != nil {
		if ct, ok := file.Metadata.Lookup("contentType").StringValueOK(); ok {
			obj.ContentType = ct
		}
	}
	return obj, nil
}

func (s *GridFSStore) Delete(ctx context.Context, name string) error {
	ctx, span := tracer.Start(ctx, "GridFSStore.Delete")
	defer span.End()

	cursor, err := s.bucket.Find(ctx, bson.D{{Key: "filename", Value: name}})
	if err != nil {
		return fmt.Errorf("find %s: %w", name, err)
	}
	var files []struct {
		ID bson.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &files); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	if len(files) == 0 {
		return ErrNotFound
	}
	for _, f := range files {
		if err := s.bucket.Delete(ctx, f.ID); err != nil {
			span.RecordError(err)
			return fmt.Errorf("delete %s: %w", name, err)
		}
	}
	return nil
}

func (s *GridFSStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
