package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/jobs"
	"github.com/spigell/job-recommender/internal/pipeline"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a candidate profile from a resume and print it as JSON",
	Run: func(cmd *cobra.Command, _ []string) {
		extract(cmd)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("resume", "r", "", "resume file: a local path or s3://bucket/key")
	extractCmd.MarkFlagRequired("resume")
}

func extract(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, config := setup()

	extractor, err := newExtractor(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("preparing the profile extractor", zap.Error(err))
	}

	location := cmd.Flag("resume").Value.String()
	loader, err := newLoader(ctx, config.Storage, location, logger)
	if err != nil {
		logger.Fatal("preparing the resume loader", zap.Error(err))
	}

	doc, err := loader.Load(ctx, location)
	if err != nil {
		logger.Fatal("loading the resume", zap.Error(err))
	}

	text, err := pipeline.DocumentText(doc)
	if err == nil {
		var profile *jobs.Profile
		profile, err = extractor.Extract(ctx, text)
		if err == nil {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(profile); err != nil {
				logger.Fatal("printing the profile", zap.Error(err))
			}
			return
		}
	}

	desc := jobs.Describe(err)
	logger.Fatal(desc.Message,
		zap.String("code", desc.Code),
		zap.String("recovery", string(desc.Recovery)),
		zap.Error(err),
	)
}
