package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/spendwise/internal/logger"
	"github.com/dvloznov/spendwise/internal/store"
)

// batchSize caps how many transactions are pushed per batch so a large
// backlog does not hammer the Notion API in one burst.
const batchSize = 100

// Stats reports what a sync run did.
type Stats struct {
	Created  int
	Updated  int
	Archived int
	Skipped  int
}

// Sync mirrors one user's transactions into a Notion database.
// Pages are keyed by the Transaction ID title property, so reruns are
// idempotent: existing pages are updated, pages whose transaction no
// longer exists are archived. With dryRun set, nothing is written.
func Sync(ctx context.Context, txStore store.TransactionStore, notion NotionService, databaseID, userID string, dryRun bool) (Stats, error) {
	log := logger.FromContext(ctx)
	var stats Stats

	log.Info().
		Str("user_id", userID).
		Bool("dry_run", dryRun).
		Msg("Starting transaction sync to Notion")

	transactions, err := txStore.FindByOwner(ctx, userID)
	if err != nil {
		return stats, fmt.Errorf("failed to query transactions: %w", err)
	}

	log.Info().Int("transaction_count", len(transactions)).Msg("Retrieved transactions")

	validIDs := make(map[string]bool, len(transactions))
	for _, tx := range transactions {
		validIDs[tx.ID] = true
	}

	pages, err := queryAllPages(ctx, notion, databaseID)
	if err != nil {
		return stats, fmt.Errorf("failed to query Notion pages: %w", err)
	}

	log.Info().Int("notion_page_count", len(pages)).Msg("Retrieved existing Notion pages")

	pageIDByTx := make(map[string]string, len(pages))
	for _, page := range pages {
		txID := pageTransactionID(page)

		if txID == "" || !validIDs[txID] {
			if dryRun {
				log.Info().
					Str("transaction_id", txID).
					Str("page_id", string(page.ID)).
					Msg("[DRY RUN] Would archive stale Notion page")
				stats.Archived++
				continue
			}
			if err := notion.ArchivePage(ctx, string(page.ID)); err != nil {
				log.Warn().
					Err(err).
					Str("page_id", string(page.ID)).
					Msg("Failed to archive stale Notion page")
				continue
			}
			stats.Archived++
			continue
		}

		pageIDByTx[txID] = string(page.ID)
	}

	for i := 0; i < len(transactions); i += batchSize {
		end := i + batchSize
		if end > len(transactions) {
			end = len(transactions)
		}

		for _, tx := range transactions[i:end] {
			pageID, exists := pageIDByTx[tx.ID]

			if dryRun {
				if exists {
					stats.Updated++
				} else {
					stats.Created++
				}
				continue
			}

			props := transactionProperties(tx)

			if exists {
				if _, err := notion.UpdatePage(ctx, pageID, props); err != nil {
					log.Warn().
						Err(err).
						Str("transaction_id", tx.ID).
						Str("page_id", pageID).
						Msg("Failed to update Notion page")
					stats.Skipped++
					continue
				}
				stats.Updated++
				continue
			}

			page, err := notion.CreatePage(ctx, databaseID, props)
			if err != nil {
				log.Warn().
					Err(err).
					Str("transaction_id", tx.ID).
					Msg("Failed to create Notion page")
				stats.Skipped++
				continue
			}
			log.Info().
				Str("transaction_id", tx.ID).
				Str("page_id", string(page.ID)).
				Msg("Created Notion page")
			stats.Created++
		}
	}

	log.Info().
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("archived", stats.Archived).
		Int("skipped", stats.Skipped).
		Msg("Notion sync complete")

	return stats, nil
}

func queryAllPages(ctx context.Context, notion NotionService, databaseID string) ([]notionapi.Page, error) {
	var all []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notion.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Results...)

		if !resp.HasMore {
			return all, nil
		}
		cursor = resp.NextCursor
	}
}
