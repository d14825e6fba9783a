// Package cli implements the newsrank command: offline related-article ranking
// over a JSON corpus file.
package cli

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrec/internal/logger"
	"github.com/kailas-cloud/newsrec/internal/textvec"
	recommenduc "github.com/kailas-cloud/newsrec/internal/usecase/recommend"
	"github.com/kailas-cloud/newsrec/internal/version"
)

// options are the flags shared by every subcommand.
type options struct {
	corpusPath     string
	topN           int
	asJSON         bool
	minTokenLength int
	stopWords      []string
	sublinearTF    bool
	logLevel       string
}

// NewRootCommand builds the newsrank command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "newsrank",
		Short: "Rank related news articles by TF-IDF cosine similarity",
		Long: `newsrank reads a JSON array of articles and ranks the ones most similar
to a given article or free text, the same way the newsrec server does.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.corpusPath, "corpus", "c", "", "path to the JSON corpus file ('-' for stdin)")
	pf.IntVarP(&opts.topN, "top", "n", recommenduc.DefaultTopN, "maximum number of results")
	pf.BoolVar(&opts.asJSON, "json", false, "output results as JSON")
	pf.IntVar(&opts.minTokenLength, "min-token-length", textvec.DefaultMinTokenLength, "shortest token kept")
	pf.StringSliceVar(&opts.stopWords, "stop-words", nil, "comma-separated words to ignore")
	pf.BoolVar(&opts.sublinearTF, "sublinear-tf", false, "weigh term frequency as 1+ln(tf)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newRelatedCommand(opts), newRankCommand(opts), newVersionCommand())
	return root
}

// Execute runs the command tree with the given arguments and streams.
func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.Execute() //nolint:wrapcheck // cobra errors are already user-facing
}

// service builds the recommendation service from the shared flags.
func (o *options) service(articles recommenduc.ArticleReader) (*recommenduc.Service, *zap.Logger, error) {
	log, err := logger.NewLogger(logger.EnvCLI, o.logLevel)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck // already descriptive
	}

	vopts := []textvec.Option{textvec.WithMinTokenLength(o.minTokenLength)}
	if len(o.stopWords) > 0 {
		vopts = append(vopts, textvec.WithStopWords(o.stopWords...))
	}
	if o.sublinearTF {
		vopts = append(vopts, textvec.WithSublinearTF())
	}
	return recommenduc.New(textvec.NewTFIDF(vopts...), articles, log), log, nil
}
