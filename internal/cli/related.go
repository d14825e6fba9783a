package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/newsrec/internal/domain/recommendation"
)

func newRelatedCommand(opts *options) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "related",
		Short: "List the articles related to a corpus article",
		Long: `Ranks the other articles of the same category by similarity to the
article with the given id, newest first on ties.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadCorpus(opts.corpusPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			svc, log, err := opts.service(c)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			out, err := svc.RelatedTo(cmd.Context(), id, opts.topN)
			if err != nil {
				return fmt.Errorf("related: %w", err)
			}
			if out.Status() == recommendation.StatusFailed {
				return errors.Join(errors.New("ranking failed"), out.Err())
			}
			return render(cmd, c, out, opts.asJSON)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "id of the article to find related news for")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
