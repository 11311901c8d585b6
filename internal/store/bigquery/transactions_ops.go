package bigquery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/dvloznov/spendwise/internal/store"
)

const transactionsTable = "transactions"

// Store is the BigQuery-backed implementation of store.TransactionStore.
type Store struct {
	client  *bigquery.Client
	dataset string
}

// NewStore creates a transaction store against the given project and
// dataset. Application Default Credentials are assumed.
func NewStore(ctx context.Context, projectID, dataset string) (*Store, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewStore: bigquery client: %w", err)
	}
	return &Store{client: client, dataset: dataset}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

var _ store.TransactionStore = (*Store)(nil)

// Insert implements store.TransactionStore.
func (s *Store) Insert(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	stored := *tx
	stored.ID = uuid.New().String()
	stored.CreatedTS = time.Now().UTC()
	if stored.Date.IsZero() {
		stored.Date = stored.CreatedTS
	}
	if stored.Currency == "" {
		stored.Currency = domain.DefaultCurrency
	}

	inserter := s.client.Dataset(s.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, transactionToRow(&stored)); err != nil {
		return nil, fmt.Errorf("Insert: inserting row: %w", err)
	}

	return &stored, nil
}

const transactionColumns = `
	transaction_id,
	user_id,
	amount,
	currency,
	category,
	description,
	date,
	date_day,
	raw_text,
	created_ts,
	updated_ts`

// FindByOwner implements store.TransactionStore.
func (s *Store) FindByOwner(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s.%s
		WHERE user_id = @user_id
		ORDER BY date, created_ts
	`, transactionColumns, s.dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindByOwner: query read: %w", err)
	}

	var result []*domain.Transaction
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("FindByOwner: iter next: %w", err)
		}
		result = append(result, rowToTransaction(&row))
	}

	return result, nil
}

// FindByID implements store.TransactionStore.
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s.%s
		WHERE transaction_id = @transaction_id
		LIMIT 1
	`, transactionColumns, s.dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "transaction_id", Value: id},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindByID: query read: %w", err)
	}

	var row TransactionRow
	if err := it.Next(&row); err != nil {
		if err == iterator.Done {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("FindByID: iter next: %w", err)
	}

	return rowToTransaction(&row), nil
}

// Update implements store.TransactionStore. Updates are last-write-wins;
// the store does no versioning.
func (s *Store) Update(ctx context.Context, id string, patch store.TransactionPatch) (*domain.Transaction, error) {
	current, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var sets []string
	params := []bigquery.QueryParameter{
		{Name: "transaction_id", Value: id},
	}

	if patch.Amount != nil {
		sets = append(sets, "amount = @amount")
		params = append(params, bigquery.QueryParameter{Name: "amount", Value: *patch.Amount})
		current.Amount = *patch.Amount
	}
	if patch.Currency != nil {
		sets = append(sets, "currency = @currency")
		params = append(params, bigquery.QueryParameter{Name: "currency", Value: *patch.Currency})
		current.Currency = *patch.Currency
	}
	if patch.Category != nil {
		sets = append(sets, "category = @category")
		params = append(params, bigquery.QueryParameter{Name: "category", Value: *patch.Category})
		category := *patch.Category
		current.Category = &category
	}
	if patch.Description != nil {
		sets = append(sets, "description = @description")
		params = append(params, bigquery.QueryParameter{Name: "description", Value: *patch.Description})
		current.Description = *patch.Description
	}
	if patch.Date != nil {
		sets = append(sets, "date = @date", "date_day = @date_day")
		params = append(params,
			bigquery.QueryParameter{Name: "date", Value: *patch.Date},
			bigquery.QueryParameter{Name: "date_day", Value: civil.DateOf(*patch.Date)})
		current.Date = *patch.Date
	}

	now := time.Now().UTC()
	sets = append(sets, "updated_ts = @updated_ts")
	params = append(params, bigquery.QueryParameter{Name: "updated_ts", Value: now})
	current.UpdatedTS = &now

	q := s.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET %s
		WHERE transaction_id = @transaction_id
	`, s.dataset, transactionsTable, strings.Join(sets, ", ")))
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("Update: running update query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("Update: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return nil, fmt.Errorf("Update: job error: %w", err)
	}

	return current, nil
}

// Delete implements store.TransactionStore.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}

	q := s.client.Query(fmt.Sprintf(`
		DELETE FROM %s.%s
		WHERE transaction_id = @transaction_id
	`, s.dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "transaction_id", Value: id},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("Delete: running delete query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("Delete: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("Delete: job error: %w", err)
	}

	return nil
}
