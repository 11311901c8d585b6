package extract

import (
	"fmt"
	"strings"
)

// buildExtractionPrompt constructs the strict-JSON extraction directive
// for a single transaction description.
func buildExtractionPrompt(text string) string {
	var b strings.Builder

	b.WriteString("You are a personal finance transaction parser.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Extract the following fields from the transaction description.\n")
	b.WriteString("- Output STRICT JSON only (no comments, no explanations, no extra text).\n")
	b.WriteString("- Output a single JSON object.\n\n")
	b.WriteString("The object must have these fields:\n")
	b.WriteString("- \"amount\": number, no currency symbol (e.g., $10.50 becomes 10.50), or null\n")
	b.WriteString("- \"currency\": string, \"USD\" if not mentioned\n")
	b.WriteString("- \"category\": string, one word (e.g., Food, Transport, Shopping, Income, Other)\n")
	b.WriteString("- \"description\": string, short summary\n")
	b.WriteString("- \"date\": string, ISO format \"YYYY-MM-DD\" if present, else null\n")
	b.WriteString("- \"confidence\": number, float between 0 and 1\n")
	b.WriteString("- \"rawText\": string, the original text\n\n")
	b.WriteString("Return ONLY valid raw JSON.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Do NOT use ```json or any Markdown.\n\n")
	b.WriteString(fmt.Sprintf("Transaction: %q\n", text))

	return b.String()
}

// cleanModelJSON strips Markdown fences and surrounding junk if the model
// ignored the formatting instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			// Single-line weirdness; just return as-is.
			return s
		}
		s = strings.TrimSpace(s)
	}

	// Remove a trailing fence only when the response actually ends with
	// one; a fence sequence inside a JSON string field is payload.
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-len("```")]
	}

	s = strings.TrimSpace(s)

	// Extra safety: if there's still junk around the JSON object,
	// keep only from the first '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
