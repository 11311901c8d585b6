package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// mockGenerator is a TextGenerator double for testing.
type mockGenerator struct {
	response string
	err      error
	prompts  []string
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func newTestEngine(gen TextGenerator) *Engine {
	return NewEngine(gen, zerolog.Nop())
}

func TestExtractPassThrough(t *testing.T) {
	gen := &mockGenerator{
		response: `{"amount": 6.50, "currency": "USD", "category": "Food",
			"description": "Coffee at Starbucks", "date": "2024-03-01",
			"confidence": 0.9, "rawText": "Coffee at Starbucks $6.50"}`,
	}
	engine := newTestEngine(gen)

	c := engine.Extract(context.Background(), "Coffee at Starbucks $6.50")

	if c.Amount == nil || *c.Amount != 6.50 {
		t.Errorf("amount = %v, want 6.50", c.Amount)
	}
	if c.Currency == nil || *c.Currency != "USD" {
		t.Errorf("currency = %v, want USD", c.Currency)
	}
	if c.Category != "Food" {
		t.Errorf("category = %q, want Food", c.Category)
	}
	if c.Date == nil || *c.Date != "2024-03-01" {
		t.Errorf("date = %v, want 2024-03-01", c.Date)
	}
	if c.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9 (model's self-reported value)", c.Confidence)
	}
	if c.RawText != "Coffee at Starbucks $6.50" {
		t.Errorf("rawText = %q", c.RawText)
	}
}

func TestExtractStripsCodeFences(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{
			name:     "json fence",
			response: "```json\n{\"amount\": 10, \"currency\": \"USD\", \"category\": \"Other\", \"description\": \"x\", \"confidence\": 1}\n```",
		},
		{
			name:     "bare fence",
			response: "```\n{\"amount\": 10, \"currency\": \"USD\", \"category\": \"Other\", \"description\": \"x\", \"confidence\": 1}\n```",
		},
		{
			name:     "leading prose",
			response: "Here you go:\n{\"amount\": 10, \"currency\": \"USD\", \"category\": \"Other\", \"description\": \"x\", \"confidence\": 1}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(&mockGenerator{response: tt.response})
			c := engine.Extract(context.Background(), "anything")
			if c.Amount == nil || *c.Amount != 10 {
				t.Errorf("amount = %v, want 10", c.Amount)
			}
			if c.Category != "Other" {
				t.Errorf("category = %q, want Other (fence cleanup failed?)", c.Category)
			}
		})
	}
}

func TestExtractPassThroughWithFenceInField(t *testing.T) {
	// A fence sequence inside a string field must not be mistaken for a
	// Markdown wrapper; the valid response passes through untouched.
	gen := &mockGenerator{
		response: `{"amount": 5, "currency": "USD", "category": "Other",
			"description": "use ` + "```" + ` fences", "date": null,
			"confidence": 0.8, "rawText": "use ` + "```" + ` fences $5"}`,
	}
	engine := newTestEngine(gen)

	c := engine.Extract(context.Background(), "use ``` fences $5")

	if c.Amount == nil || *c.Amount != 5 {
		t.Errorf("amount = %v, want 5", c.Amount)
	}
	if c.Category != "Other" {
		t.Errorf("category = %q, want Other", c.Category)
	}
	if c.Description != "use ``` fences" {
		t.Errorf("description = %q", c.Description)
	}
	if c.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8 (model's self-reported value)", c.Confidence)
	}
}

func TestExtractFallbackOnBadOutput(t *testing.T) {
	engine := newTestEngine(&mockGenerator{response: "sorry, I can't help with that"})

	c := engine.Extract(context.Background(), "Lunch with team $42.75 downtown")

	if c.Amount == nil || *c.Amount != 42.75 {
		t.Fatalf("amount = %v, want 42.75", c.Amount)
	}
	if c.Currency == nil || *c.Currency != "USD" {
		t.Errorf("currency = %v, want USD when amount matched", c.Currency)
	}
	if c.Category != UncategorizedCategory {
		t.Errorf("category = %q, want Uncategorized", c.Category)
	}
	if c.Description != "Lunch with team $42.75 downtown" {
		t.Errorf("description = %q, want full original text", c.Description)
	}
	if c.Date != nil {
		t.Errorf("date = %v, want nil", c.Date)
	}
	if c.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0 on the unparseable-output path", c.Confidence)
	}
	if c.RawText != "Lunch with team $42.75 downtown" {
		t.Errorf("rawText = %q, want original text echoed", c.RawText)
	}
}

func TestExtractFallbackOnBadOutputNoAmount(t *testing.T) {
	engine := newTestEngine(&mockGenerator{response: "not json"})

	c := engine.Extract(context.Background(), "bought some things")

	if c.Amount != nil {
		t.Errorf("amount = %v, want nil when nothing matched", *c.Amount)
	}
	if c.Currency != nil {
		t.Errorf("currency = %v, want nil when no amount matched on this path", *c.Currency)
	}
	if c.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", c.Confidence)
	}
}

func TestExtractFallbackOnCallFailure(t *testing.T) {
	engine := newTestEngine(&mockGenerator{err: errors.New("connection refused")})

	c := engine.Extract(context.Background(), "Coffee at Starbucks $6.50")

	if c.Amount == nil || *c.Amount != 6.50 {
		t.Fatalf("amount = %v, want 6.50", c.Amount)
	}
	if c.Currency == nil || *c.Currency != "USD" {
		t.Errorf("currency = %v, want USD", c.Currency)
	}
	if c.Category != UncategorizedCategory {
		t.Errorf("category = %q, want Uncategorized", c.Category)
	}
	if c.Confidence != 0.25 {
		t.Errorf("confidence = %v, want 0.25 on the call-failure path", c.Confidence)
	}
	if c.RawText != "" {
		t.Errorf("rawText = %q, want unset on the call-failure path", c.RawText)
	}
}

func TestExtractFallbackOnCallFailureCurrencyAlwaysUSD(t *testing.T) {
	engine := newTestEngine(&mockGenerator{err: errors.New("timeout")})

	c := engine.Extract(context.Background(), "no numbers here")

	if c.Amount != nil {
		t.Errorf("amount = %v, want nil", *c.Amount)
	}
	// Unlike the unparseable-output path, currency is set even when no
	// amount was found.
	if c.Currency == nil || *c.Currency != "USD" {
		t.Errorf("currency = %v, want USD regardless of amount match", c.Currency)
	}
	if c.Confidence != 0.25 {
		t.Errorf("confidence = %v, want 0.25", c.Confidence)
	}
}

func TestFallbackExtractorAmountPatterns(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *float64
	}{
		{"dollar sign with cents", "Coffee $6.50 today", ptr(6.50)},
		{"no dollar sign", "paid 120 for utilities", ptr(120.0)},
		{"single decimal digit", "tip $3.5", ptr(3.5)},
		{"first match wins", "$20 then $35", ptr(20.0)},
		{"three decimals captures two", "rate 1.999", ptr(1.99)},
		{"no amount", "bought groceries", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := FallbackExtractor{}.Extract(tt.text)

			if tt.want == nil {
				if c.Amount != nil {
					t.Errorf("amount = %v, want nil", *c.Amount)
				}
				if c.Currency != nil {
					t.Errorf("currency = %v, want nil", *c.Currency)
				}
				return
			}
			if c.Amount == nil || *c.Amount != *tt.want {
				t.Errorf("amount = %v, want %v", c.Amount, *tt.want)
			}
			if c.Currency == nil || *c.Currency != "USD" {
				t.Errorf("currency = %v, want USD", c.Currency)
			}
		})
	}
}

func TestPromptEmbedsText(t *testing.T) {
	gen := &mockGenerator{response: `{"amount": 1, "category": "Other", "description": "x", "confidence": 1}`}
	engine := newTestEngine(gen)

	engine.Extract(context.Background(), "Taxi home $18")

	if len(gen.prompts) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	for _, want := range []string{"Taxi home $18", "STRICT JSON", "rawText", "YYYY-MM-DD"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func ptr(f float64) *float64 { return &f }
