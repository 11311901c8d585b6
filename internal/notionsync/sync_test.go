package notionsync

import (
	"context"
	"testing"
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/dvloznov/spendwise/internal/store/memory"
)

type fakeNotion struct {
	pages    []notionapi.Page
	created  []string
	updated  []string
	archived []string
	nextID   int
}

func (f *fakeNotion) CreatePage(_ context.Context, _ string, props notionapi.Properties) (*notionapi.Page, error) {
	f.nextID++
	title := props["Transaction ID"].(notionapi.TitleProperty)
	f.created = append(f.created, title.Title[0].Text.Content)
	return &notionapi.Page{ID: notionapi.ObjectID(time.Now().Format("150405") + string(rune('a'+f.nextID)))}, nil
}

func (f *fakeNotion) UpdatePage(_ context.Context, pageID string, _ notionapi.Properties) (*notionapi.Page, error) {
	f.updated = append(f.updated, pageID)
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

func (f *fakeNotion) QueryDatabase(_ context.Context, _ string, _ *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{Results: f.pages, HasMore: false}, nil
}

func (f *fakeNotion) ArchivePage(_ context.Context, pageID string) error {
	f.archived = append(f.archived, pageID)
	return nil
}

func pageFor(txID, pageID string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(pageID),
		Properties: notionapi.Properties{
			"Transaction ID": &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: txID}},
			},
		},
	}
}

func TestSyncCreatesPagesForNewTransactions(t *testing.T) {
	ctx := context.Background()
	txStore := memory.NewStore()

	for _, desc := range []string{"coffee", "groceries"} {
		_, err := txStore.Insert(ctx, &domain.Transaction{
			UserID:      "user-1",
			Amount:      -5,
			Description: desc,
			Date:        time.Now(),
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	notion := &fakeNotion{}
	stats, err := Sync(ctx, txStore, notion, "db-1", "user-1", false)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if stats.Created != 2 {
		t.Errorf("created = %d, want 2", stats.Created)
	}
	if stats.Updated != 0 || stats.Archived != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if len(notion.created) != 2 {
		t.Errorf("create calls = %d, want 2", len(notion.created))
	}
}

func TestSyncUpdatesExistingPages(t *testing.T) {
	ctx := context.Background()
	txStore := memory.NewStore()

	tx, err := txStore.Insert(ctx, &domain.Transaction{
		UserID:      "user-1",
		Amount:      -5,
		Description: "coffee",
		Date:        time.Now(),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	notion := &fakeNotion{pages: []notionapi.Page{pageFor(tx.ID, "page-1")}}
	stats, err := Sync(ctx, txStore, notion, "db-1", "user-1", false)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if stats.Updated != 1 || stats.Created != 0 {
		t.Errorf("stats = %+v, want 1 update", stats)
	}
	if len(notion.updated) != 1 || notion.updated[0] != "page-1" {
		t.Errorf("updated pages = %v", notion.updated)
	}
}

func TestSyncArchivesStalePages(t *testing.T) {
	ctx := context.Background()
	txStore := memory.NewStore()

	notion := &fakeNotion{pages: []notionapi.Page{pageFor("gone-tx", "page-stale")}}
	stats, err := Sync(ctx, txStore, notion, "db-1", "user-1", false)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if stats.Archived != 1 {
		t.Errorf("archived = %d, want 1", stats.Archived)
	}
	if len(notion.archived) != 1 || notion.archived[0] != "page-stale" {
		t.Errorf("archived pages = %v", notion.archived)
	}
}

func TestSyncDryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	txStore := memory.NewStore()

	if _, err := txStore.Insert(ctx, &domain.Transaction{
		UserID: "user-1",
		Amount: 10,
		Date:   time.Now(),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	notion := &fakeNotion{pages: []notionapi.Page{pageFor("gone-tx", "page-stale")}}
	stats, err := Sync(ctx, txStore, notion, "db-1", "user-1", true)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if stats.Created != 1 || stats.Archived != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if len(notion.created) != 0 || len(notion.archived) != 0 || len(notion.updated) != 0 {
		t.Error("dry run issued writes")
	}
}
