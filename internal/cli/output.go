package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/newsrec/internal/domain/recommendation"
)

// resultItem is one ranked article as printed by --json.
type resultItem struct {
	Rank     int     `json:"rank"`
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// resultOutput is the --json document.
type resultOutput struct {
	Status string       `json:"status"`
	Reason string       `json:"reason,omitempty"`
	Items  []resultItem `json:"items"`
}

func render(cmd *cobra.Command, c *corpus, out recommendation.Outcome, asJSON bool) error {
	items := make([]resultItem, 0, len(out.Items()))
	for i, it := range out.Items() {
		a, err := c.Get(cmd.Context(), it.ID)
		if err != nil {
			return err
		}
		items = append(items, resultItem{
			Rank:     i + 1,
			ID:       it.ID,
			Title:    a.Title(),
			Category: a.Category(),
			Score:    it.Score,
		})
	}

	if asJSON {
		data, err := json.MarshalIndent(resultOutput{
			Status: string(out.Status()),
			Reason: string(out.Reason()),
			Items:  items,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(items) == 0 {
		cmd.Println("No related news.")
		return nil
	}
	for _, it := range items {
		cmd.Printf("  [%d] %s (%.4f)\n", it.Rank, it.Title, it.Score)
		cmd.Printf("      %s / %s\n", it.Category, it.ID)
	}
	return nil
}
