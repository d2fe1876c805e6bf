package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Navyasribhaskar/Casestudy/scorer"
)

type scoreOptions struct {
	transcriptPath string
	text           string
	asJSON         bool
	csvPath        string
}

func scoreCmd(g *globalOptions) *cobra.Command {
	var opts scoreOptions
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a transcript and print the breakdown",
		Example: `  rubric-cli score --rubric rubric.csv --transcript talk.txt
  cat talk.txt | rubric-cli score --transcript - --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, g, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.transcriptPath, "transcript", "t", "", "Transcript file, or - for stdin")
	cmd.Flags().StringVar(&opts.text, "text", "", "Transcript text given inline")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "Also write the breakdown to this CSV file")
	return cmd
}

func runScore(cmd *cobra.Command, g *globalOptions, opts scoreOptions) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, g.logJSON)

	transcript, err := readTranscript(cmd.InOrStdin(), opts)
	if err != nil {
		return err
	}

	engines := scorer.NewEngineHolder(scorer.NewEngineFactory(cfg.Embedder, logger), logger)
	defer engines.Close()
	svc := scorer.NewService(engines, scorer.NewRubricStore(logger, cfg.RubricCandidates()...),
		scorer.WithWorkers(cfg.Workers),
		scorer.WithLogger(logger),
	)
	report, err := svc.Score(cmd.Context(), transcript)
	if err != nil {
		return err
	}

	if opts.csvPath != "" {
		if err := writeReportFile(opts.csvPath, report); err != nil {
			return err
		}
		logger.Info("report written", "path", opts.csvPath)
	}
	if opts.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printReport(cmd.OutOrStdout(), report)
}

func readTranscript(stdin io.Reader, opts scoreOptions) (string, error) {
	switch {
	case opts.text != "" && opts.transcriptPath != "":
		return "", errors.New("use either --text or --transcript, not both")
	case opts.text != "":
		return opts.text, nil
	case opts.transcriptPath == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	case opts.transcriptPath != "":
		data, err := os.ReadFile(opts.transcriptPath)
		if err != nil {
			return "", fmt.Errorf("read transcript: %w", err)
		}
		return string(data), nil
	default:
		return "", errors.New("missing transcript: pass --transcript FILE, --transcript - or --text")
	}
}

func writeReportFile(path string, report scorer.ScoreReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := scorer.WriteReportCSV(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printReport(w io.Writer, report scorer.ScoreReport) error {
	fmt.Fprintf(w, "Overall: %.2f\nWords: %d\n\n", report.OverallScore, report.WordCount)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CRITERION\tSCORE\tWEIGHT\tSEMANTIC\tKEYWORDS\tLENGTH\tFOUND")
	for _, c := range report.PerCriterion {
		fmt.Fprintf(tw, "%s\t%.2f\t%g\t%.4f\t%.3f\t%.3f\t%s\n",
			c.Criterion, c.CriterionScore, c.Weight, c.SemanticSimilarity,
			c.KeywordFraction, c.LengthFraction, strings.Join(c.FoundKeywords, ", "))
	}
	return tw.Flush()
}
