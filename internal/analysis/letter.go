package analysis

import (
	"context"
	"fmt"

	"billsage/internal/domain"
	"billsage/internal/port"
)

// LetterWriter drafts the dispute letter for a bill with issues.
type LetterWriter struct {
	client port.CompletionClient
}

// NewLetterWriter creates a letter synthesis stage backed by the given client.
func NewLetterWriter(client port.CompletionClient) *LetterWriter {
	return &LetterWriter{client: client}
}

// Compose generates the dispute letter text. Callers treat a failure
// here as non-terminal: the analysis stands, the letter is absent.
func (w *LetterWriter) Compose(ctx context.Context, bill *domain.ExtractedBill, issues []domain.Issue, totalSavings float64) (string, error) {
	letter, err := w.client.Complete(ctx, port.CompletionRequest{
		System: letterSystemPrompt,
		User:   letterUserContent(bill, issues, totalSavings),
	})
	if err != nil {
		return "", fmt.Errorf("letter completion call: %w", err)
	}
	return letter, nil
}
