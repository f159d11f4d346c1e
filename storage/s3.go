package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"blog-hand/config"
	"blog-hand/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// ObjectAPI ist der Teil des S3-Clients, den der Export benötigt.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Snapshot ist das Format einer exportierten Datei.
type Snapshot struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Count       int               `json:"count"`
	Articles    []*models.Article `json:"articles"`
}

// NewS3Client erstellt einen S3-Client für einen S3-kompatiblen Endpunkt.
func NewS3Client(cfg *config.Config) (*s3.Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.ExportS3URL,
				SigningRegion:     cfg.ExportS3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.ExportS3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.ExportS3Key, cfg.ExportS3Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// Exporter lädt Snapshots als gzip-komprimiertes JSON hoch und rotiert alte Exporte.
type Exporter struct {
	Client  ObjectAPI
	BaseURL string
	Bucket  string
	Prefix  string
	Keep    int
	Logger  *zap.Logger
}

// NewExporter erstellt einen Exporter aus der Konfiguration.
func NewExporter(cfg *config.Config, logger *zap.Logger) (*Exporter, error) {
	client, err := NewS3Client(cfg)
	if err != nil {
		return nil, err
	}
	return &Exporter{
		Client:  client,
		BaseURL: cfg.ExportS3URL,
		Bucket:  cfg.ExportS3Bucket,
		Prefix:  cfg.ExportPrefix,
		Keep:    cfg.ExportKeep,
		Logger:  logger,
	}, nil
}

// SnapshotKey gibt den Objektschlüssel eines Exports zum Zeitpunkt t zurück.
func (e *Exporter) SnapshotKey(t time.Time) string {
	return e.Prefix + fmt.Sprintf("articles-%s.json.gz", t.UTC().Format("2006-01-02T15-04-05Z"))
}

// Export lädt die Artikel hoch und gibt den Link zum Objekt zurück.
func (e *Exporter) Export(ctx context.Context, articles []*models.Article, now time.Time) (string, error) {
	data, err := encodeSnapshot(Snapshot{GeneratedAt: now.UTC(), Count: len(articles), Articles: articles})
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := e.SnapshotKey(now)
	_, err = e.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(e.Bucket),
		Key:             aws.String(key),
		Body:            bytes.NewReader(data),
		ContentType:     aws.String("application/json"),
		ContentEncoding: aws.String("gzip"),
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot %s: %w", key, err)
	}
	link := fmt.Sprintf("%s/%s/%s", strings.TrimRight(e.BaseURL, "/"), e.Bucket, key)
	e.Logger.Info("Snapshot exportiert", zap.String("key", key), zap.Int("articles", len(articles)))
	return link, nil
}

// Rotate behält die Keep neuesten Exporte unter Prefix und löscht den Rest.
// Fehler beim Löschen einzelner Objekte werden geloggt, nicht zurückgegeben.
func (e *Exporter) Rotate(ctx context.Context) (int, error) {
	var objects []types.Object
	paginator := s3.NewListObjectsV2Paginator(e.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(e.Bucket),
		Prefix: aws.String(e.Prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("list snapshots: %w", err)
		}
		objects = append(objects, page.Contents...)
	}

	if len(objects) <= e.Keep {
		e.Logger.Debug("Keine Rotation nötig", zap.Int("exports", len(objects)), zap.Int("keep", e.Keep))
		return 0, nil
	}

	sort.Slice(objects, func(i, j int) bool {
		return lastModified(objects[i]).After(lastModified(objects[j]))
	})

	deleted := 0
	for _, obj := range objects[e.Keep:] {
		e.Logger.Info("Lösche alten Export", zap.String("key", aws.ToString(obj.Key)))
		_, err := e.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(e.Bucket),
			Key:    obj.Key,
		})
		if err != nil {
			e.Logger.Error("Fehler beim Löschen", zap.String("key", aws.ToString(obj.Key)), zap.Error(err))
			continue
		}
		deleted++
	}
	return deleted, nil
}

func lastModified(obj types.Object) time.Time {
	if obj.LastModified == nil {
		return time.Time{}
	}
	return *obj.LastModified
}

func encodeSnapshot(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(s); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
