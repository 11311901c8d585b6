package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"

	"github.com/dvloznov/spendwise/internal/analytics"
	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/dvloznov/spendwise/internal/jobs"
	"github.com/dvloznov/spendwise/internal/store"
)

// ObjectStorage abstracts writing export documents to a bucket.
type ObjectStorage interface {
	// WriteObject writes data under objectName and returns its URI.
	WriteObject(ctx context.Context, objectName string, data []byte) (string, error)
}

// GCSStorage writes export documents to a Google Cloud Storage bucket.
// It assumes Application Default Credentials are configured.
type GCSStorage struct {
	bucket string
}

// NewGCSStorage creates a GCS-backed ObjectStorage for the given bucket.
func NewGCSStorage(bucket string) *GCSStorage {
	return &GCSStorage{bucket: bucket}
}

// WriteObject uploads data to the bucket under objectName.
func (s *GCSStorage) WriteObject(ctx context.Context, objectName string, data []byte) (string, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	obj := client.Bucket(s.bucket).Object(objectName)
	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write GCS object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close GCS writer: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName), nil
}

// Document is the JSON shape written for each export.
type Document struct {
	UserID       string                    `json:"user_id"`
	GeneratedAt  time.Time                 `json:"generated_at"`
	Summary      analytics.Summary         `json:"summary"`
	Categories   []analytics.CategoryTotal `json:"categories"`
	Trends       []analytics.TrendPoint    `json:"trends"`
	Transactions []*domain.Transaction     `json:"transactions"`
}

// Service builds export documents and uploads them.
type Service struct {
	txStore store.TransactionStore
	storage ObjectStorage
	log     zerolog.Logger
}

// NewService creates an export service.
func NewService(txStore store.TransactionStore, storage ObjectStorage, log zerolog.Logger) *Service {
	return &Service{
		txStore: txStore,
		storage: storage,
		log:     log.With().Str("component", "export").Logger(),
	}
}

// Handle processes an export job. It satisfies jobs.JobHandler through
// HandleJob on the caller side.
func (s *Service) Handle(ctx context.Context, job *jobs.ExportJob) error {
	txs, err := s.txStore.FindByOwner(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	doc := Document{
		UserID:       job.UserID,
		GeneratedAt:  time.Now().UTC(),
		Summary:      analytics.Summarize(txs),
		Categories:   analytics.CategoryBreakdown(txs),
		Trends:       analytics.Trends(txs, analytics.PeriodMonthly),
		Transactions: txs,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export document: %w", err)
	}

	objectName := fmt.Sprintf("exports/%s/%s.json", job.UserID, job.JobID)
	uri, err := s.storage.WriteObject(ctx, objectName, data)
	if err != nil {
		return fmt.Errorf("upload export document: %w", err)
	}

	job.GCSURI = uri
	s.log.Info().
		Str("job_id", job.JobID).
		Str("user_id", job.UserID).
		Str("uri", uri).
		Int("transactions", len(txs)).
		Msg("export document written")
	return nil
}

// HandleJob adapts Handle to the generic job handler signature.
func (s *Service) HandleJob(ctx context.Context, job jobs.Job) error {
	exportJob, ok := job.(*jobs.ExportJob)
	if !ok {
		return fmt.Errorf("unexpected job type %s", job.GetType())
	}
	return s.Handle(ctx, exportJob)
}
