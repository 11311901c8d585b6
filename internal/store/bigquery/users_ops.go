package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/dvloznov/spendwise/internal/store"
)

const usersTable = "users"

// Users is the BigQuery-backed implementation of store.UserStore.
type Users struct {
	client  *bigquery.Client
	dataset string
}

// NewUsers creates a user store against the given project and dataset.
func NewUsers(ctx context.Context, projectID, dataset string) (*Users, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewUsers: bigquery client: %w", err)
	}
	return &Users{client: client, dataset: dataset}, nil
}

// Close releases the underlying client.
func (s *Users) Close() error {
	return s.client.Close()
}

var _ store.UserStore = (*Users)(nil)

const userColumns = `
	user_id,
	google_id,
	email,
	name,
	avatar,
	refresh_tokens,
	created_ts`

// FindByGoogleID implements store.UserStore.
func (s *Users) FindByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s.%s
		WHERE google_id = @google_id
		LIMIT 1
	`, userColumns, s.dataset, usersTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "google_id", Value: googleID},
	}

	return s.queryOne(ctx, q, "FindByGoogleID")
}

// FindByID implements store.UserStore.
func (s *Users) FindByID(ctx context.Context, id string) (*domain.User, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s.%s
		WHERE user_id = @user_id
		LIMIT 1
	`, userColumns, s.dataset, usersTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: id},
	}

	return s.queryOne(ctx, q, "FindByID")
}

func (s *Users) queryOne(ctx context.Context, q *bigquery.Query, op string) (*domain.User, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: query read: %w", op, err)
	}

	var row UserRow
	if err := it.Next(&row); err != nil {
		if err == iterator.Done {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("%s: iter next: %w", op, err)
	}

	return rowToUser(&row), nil
}

// Insert implements store.UserStore.
func (s *Users) Insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	stored := *user
	stored.ID = uuid.New().String()
	stored.CreatedTS = time.Now().UTC()

	inserter := s.client.Dataset(s.dataset).Table(usersTable).Inserter()
	if err := inserter.Put(ctx, userToRow(&stored)); err != nil {
		return nil, fmt.Errorf("Insert: inserting row: %w", err)
	}

	return &stored, nil
}

// ReplaceRefreshTokens implements store.UserStore.
func (s *Users) ReplaceRefreshTokens(ctx context.Context, userID string, tokens []string) error {
	q := s.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET refresh_tokens = @refresh_tokens
		WHERE user_id = @user_id
	`, s.dataset, usersTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "refresh_tokens", Value: tokens},
		{Name: "user_id", Value: userID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("ReplaceRefreshTokens: running update query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("ReplaceRefreshTokens: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("ReplaceRefreshTokens: job error: %w", err)
	}

	return nil
}
