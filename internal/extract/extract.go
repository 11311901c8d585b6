// Package extract converts free-text transaction descriptions into
// structured candidate records. The primary strategy asks a generative
// model for a strict-JSON extraction; a regex-based fallback guarantees a
// best-effort candidate when the model call fails or returns garbage.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spendwise/internal/domain"
)

// Candidate is the structured, possibly-partial output of extraction,
// prior to persistence. Amount, Currency and Date are pointers because
// the model is allowed to return null for them.
type Candidate struct {
	Amount      *float64 `json:"amount"`
	Currency    *string  `json:"currency"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Date        *string  `json:"date"`
	Confidence  float64  `json:"confidence"`
	RawText     string   `json:"rawText,omitempty"`
}

// UncategorizedCategory is assigned by the fallback path, where no model
// classification is available.
const UncategorizedCategory = "Uncategorized"

// TextGenerator is the injected inference capability: one-shot text
// completion. Implementations may fail with a network error or return
// content that is not valid JSON; both are handled by the Engine.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrGeneration marks a total failure of the external inference call.
var ErrGeneration = errors.New("model generation failed")

// ErrUnparseable marks a model response that could not be decoded as a
// candidate.
var ErrUnparseable = errors.New("model output not parseable")

// ModelExtractor is the inference-backed extraction strategy.
type ModelExtractor struct {
	generator TextGenerator
}

// NewModelExtractor creates the primary extractor around the given
// generator.
func NewModelExtractor(generator TextGenerator) *ModelExtractor {
	return &ModelExtractor{generator: generator}
}

// Extract asks the model for a strict-JSON candidate. Failures are
// classified: errors wrapping ErrGeneration mean the call itself failed,
// errors wrapping ErrUnparseable mean the call succeeded but the output
// could not be decoded.
func (m *ModelExtractor) Extract(ctx context.Context, text string) (Candidate, error) {
	raw, err := m.generator.Generate(ctx, buildExtractionPrompt(text))
	if err != nil {
		return Candidate{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	clean := cleanModelJSON(raw)

	var c Candidate
	if err := json.Unmarshal([]byte(clean), &c); err != nil {
		return Candidate{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	// The model's self-reported fields are trusted as-is.
	return c, nil
}

// Engine composes the model-backed extractor with the regex fallback.
// Extract never fails: the caller always gets some candidate.
type Engine struct {
	primary  *ModelExtractor
	fallback FallbackExtractor
	log      zerolog.Logger
}

// NewEngine creates an extraction engine over the given generator.
func NewEngine(generator TextGenerator, log zerolog.Logger) *Engine {
	return &Engine{
		primary:  NewModelExtractor(generator),
		fallback: FallbackExtractor{},
		log:      log,
	}
}

// Extract produces a candidate for the given text. On model success the
// parsed candidate is returned unmodified. The two failure paths differ:
//   - unparseable model output: fallback candidate with confidence 1.0,
//     currency set only when an amount was matched, raw text echoed;
//   - failed model call: fallback candidate with confidence 0.25 and
//     currency always "USD", raw text left unset.
func (e *Engine) Extract(ctx context.Context, text string) Candidate {
	c, err := e.primary.Extract(ctx, text)
	if err == nil {
		return c
	}

	fb := e.fallback.Extract(text)

	if errors.Is(err, ErrUnparseable) {
		e.log.Warn().Err(err).Msg("Model output unparseable, using regex fallback")
		fb.Confidence = 1.0
		fb.RawText = text
		return fb
	}

	e.log.Warn().Err(err).Msg("Model call failed, using regex fallback")
	fb.Confidence = 0.25
	currency := domain.DefaultCurrency
	fb.Currency = &currency
	return fb
}
