package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	domart "github.com/kailas-cloud/newsrec/internal/domain/article"
	"github.com/kailas-cloud/newsrec/internal/domain/recommendation"
)

func newRankCommand(opts *options) *cobra.Command {
	var (
		text     string
		category string
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank corpus articles against free text",
		Long: `Ranks the corpus articles, optionally restricted to one category, by
similarity to the given text. Reads the text from stdin when --text is '-'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if text == "-" {
				if opts.corpusPath == "-" {
					return errors.New("--text and --corpus cannot both read stdin")
				}
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read text: %w", err)
				}
				text = strings.TrimSpace(string(data))
			}

			c, err := loadCorpus(opts.corpusPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			svc, log, err := opts.service(c)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			peers, err := c.ListByCategory(cmd.Context(), category)
			if err != nil {
				return err
			}
			query := recommendation.Document{Text: text}
			out := svc.Recommend(cmd.Context(), query, domart.Documents(peers), opts.topN)
			if out.Status() == recommendation.StatusFailed {
				return errors.Join(errors.New("ranking failed"), out.Err())
			}
			return render(cmd, c, out, opts.asJSON)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "text to rank the corpus against ('-' for stdin)")
	cmd.Flags().StringVar(&category, "category", "", "restrict candidates to one category")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
