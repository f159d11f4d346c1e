package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"blog-hand/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeObjects struct {
	puts      map[string][]byte
	objects   []types.Object
	deleted   []string
	deleteErr map[string]error
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	f.puts[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) ListObjectsV2(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return &s3.ListObjectsV2Output{Contents: f.objects}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	key := aws.ToString(in.Key)
	if err := f.deleteErr[key]; err != nil {
		return nil, err
	}
	f.deleted = append(f.deleted, key)
	return &s3.DeleteObjectOutput{}, nil
}

func newTestExporter(client *fakeObjects, keep int) *Exporter {
	return &Exporter{
		Client:  client,
		BaseURL: "https://s3.example.com/",
		Bucket:  "blog",
		Prefix:  "snapshots/",
		Keep:    keep,
		Logger:  zap.NewNop(),
	}
}

func TestExporter_Export(t *testing.T) {
	client := &fakeObjects{}
	e := newTestExporter(client, 4)
	now := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	link, err := e.Export(context.Background(), []*models.Article{{ID: "a", Title: "A"}}, now)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com/blog/snapshots/articles-2024-05-01T12-30-00Z.json.gz", link)

	raw := client.puts["snapshots/articles-2024-05-01T12-30-00Z.json.gz"]
	require.NotEmpty(t, raw)
	gz, err := gzip.NewReader(bytes.NewReader(raw))
	require.NoError(t, err)
	var snap Snapshot
	require.NoError(t, json.NewDecoder(gz).Decode(&snap))
	assert.Equal(t, 1, snap.Count)
	assert.Equal(t, "A", snap.Articles[0].Title)
	assert.True(t, snap.GeneratedAt.Equal(now))
}

func TestExporter_Rotate(t *testing.T) {
	at := func(day int) *time.Time {
		ts := time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
		return &ts
	}

	t.Run("keeps newest", func(t *testing.T) {
		client := &fakeObjects{objects: []types.Object{
			{Key: aws.String("snapshots/a"), LastModified: at(1)},
			{Key: aws.String("snapshots/d"), LastModified: at(4)},
			{Key: aws.String("snapshots/b"), LastModified: at(2)},
			{Key: aws.String("snapshots/c"), LastModified: at(3)},
		}}
		deleted, err := newTestExporter(client, 2).Rotate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, deleted)
		assert.ElementsMatch(t, []string{"snapshots/a", "snapshots/b"}, client.deleted)
	})

	t.Run("nothing to rotate", func(t *testing.T) {
		client := &fakeObjects{objects: []types.Object{{Key: aws.String("snapshots/a"), LastModified: at(1)}}}
		deleted, err := newTestExporter(client, 2).Rotate(context.Background())
		require.NoError(t, err)
		assert.Zero(t, deleted)
		assert.Empty(t, client.deleted)
	})

	t.Run("delete failures are skipped", func(t *testing.T) {
		client := &fakeObjects{
			objects: []types.Object{
				{Key: aws.String("snapshots/a"), LastModified: at(1)},
				{Key: aws.String("snapshots/b"), LastModified: at(2)},
				{Key: aws.String("snapshots/c"), LastModified: at(3)},
			},
			deleteErr: map[string]error{"snapshots/a": errors.New("denied")},
		}
		deleted, err := newTestExporter(client, 1).Rotate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)
		assert.Equal(t, []string{"snapshots/b"}, client.deleted)
	})
}
