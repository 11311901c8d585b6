package notionsync

import (
	"github.com/jomei/notionapi"

	"github.com/dvloznov/spendwise/internal/domain"
)

// transactionProperties converts a transaction into the property set of
// the spendwise Notion database. The Transaction ID title property keys
// idempotency across sync runs.
func transactionProperties(tx *domain.Transaction) notionapi.Properties {
	props := notionapi.Properties{
		"Transaction ID": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.ID,
					},
				},
			},
		},
		"Amount": notionapi.NumberProperty{
			Number: tx.Amount,
		},
	}

	if tx.Description != "" {
		props["Description"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.Description,
					},
				},
			},
		}
	}

	if tx.Currency != "" {
		props["Currency"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.Currency,
			},
		}
	}

	if tx.Category != nil && *tx.Category != "" {
		props["Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: *tx.Category,
			},
		}
	}

	if !tx.Date.IsZero() {
		d := notionapi.Date(tx.Date)
		props["Date"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: &d,
			},
		}
	}

	if tx.RawText != "" {
		props["Raw Text"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.RawText,
					},
				},
			},
		}
	}

	return props
}

// pageTransactionID pulls the Transaction ID title back out of a page.
// Returns "" when the page was not created by this sync.
func pageTransactionID(page notionapi.Page) string {
	prop, ok := page.Properties["Transaction ID"]
	if !ok {
		return ""
	}

	title, ok := prop.(*notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 {
		return ""
	}

	return title.Title[0].PlainText
}
