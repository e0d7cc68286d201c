package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/filtering"
	"github.com/spigell/job-recommender/internal/jobs"
	"github.com/spigell/job-recommender/internal/pipeline"
)

const (
	PromptShowDetails         = "Show details"
	PromptResultsToFile       = "Dump results to file"
	PromptAppendToExcludeFile = "Append shown postings to exclude file"
	PromptRetry               = "Retry"
	PromptSwitchToManual      = "Switch to manual entry"
	PromptEditProfile         = "Edit the profile"
	PromptExit                = "Exit"
	PromptBack                = "back"
	promptSkipLevel           = "skip"
)

var errExit = errors.New("exit requested")

// input is what a run starts from: a resume location or a manual profile.
type input struct {
	resume  string
	profile *jobs.Profile
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Extract a profile and rank matching job postings",
	Run: func(cmd *cobra.Command, _ []string) {
		recommend(cmd)
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringP("resume", "r", "", "resume file to extract the profile from: a local path or s3://bucket/key")
	recommendCmd.Flags().BoolP("manual", "m", false, "enter the profile manually instead of reading a resume")
	recommendCmd.Flags().StringSlice("skills", nil, "comma separated skills for manual mode")
	recommendCmd.Flags().StringSlice("interests", nil, "comma separated job titles for manual mode")
	recommendCmd.Flags().StringSlice("locations", nil, "comma separated preferred locations for manual mode")
	recommendCmd.Flags().String("experience-level", "", "entry, mid or senior for manual mode")
	recommendCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
	recommendCmd.Flags().BoolP("auto-approve", "y", false, "print the results and exit without asking")
	recommendCmd.Flags().Bool("scrape", false, "read company, location and salary from the posting pages")
	recommendCmd.Flags().StringP("exclude-file", "e", "", "file with application URLs to exclude. Default is unset.")

	viper.BindPFlag("scrape.enabled", recommendCmd.Flags().Lookup("scrape"))
	viper.BindPFlag("exclude.file", recommendCmd.Flags().Lookup("exclude-file"))
}

func recommend(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, config := setup()

	in, err := inputFromFlags(cmd)
	if err != nil {
		logger.Fatal("reading input", zap.Error(err))
	}

	p, err := newPipeline(ctx, config, logger, in.resume != "")
	if err != nil {
		logger.Fatal("preparing the pipeline", zap.Error(err))
	}

	format := cmd.Flag("output").Value.String()
	autoApprove := cmd.Flag("auto-approve").Value.String() == "true"

	for {
		result, err := runOnce(ctx, p, config, in, logger)
		if err != nil {
			desc := jobs.Describe(err)
			logger.Error(desc.Message,
				zap.String("code", desc.Code),
				zap.String("recovery", string(desc.Recovery)),
				zap.Error(err),
			)
			if autoApprove {
				os.Exit(1)
			}

			next, err := afterFailure(err, in)
			if err != nil {
				if errors.Is(err, errExit) {
					return
				}
				logger.Fatal("exiting", zap.Error(err))
			}
			in = next
			continue
		}

		if err := render(os.Stdout, result, format); err != nil {
			logger.Fatal("rendering results", zap.Error(err))
		}

		if autoApprove {
			return
		}

		if err := resultsMenu(result, config, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func runOnce(ctx context.Context, p *pipeline.Pipeline, config *Config, in input, logger *zap.Logger) (*pipeline.Result, error) {
	if in.profile != nil {
		return p.FromProfile(ctx, in.profile)
	}

	loader, err := newLoader(ctx, config.Storage, in.resume, logger)
	if err != nil {
		return nil, err
	}
	doc, err := loader.Load(ctx, in.resume)
	if err != nil {
		return nil, &jobs.ExtractionFailure{Reason: "resume could not be loaded", Cause: err}
	}
	logger.Info("loaded resume", zap.String("name", doc.Name), zap.String("type", doc.MIME), zap.Int("bytes", len(doc.Data)))

	return p.FromDocument(ctx, doc)
}

func inputFromFlags(cmd *cobra.Command) (input, error) {
	resume := strings.TrimSpace(cmd.Flag("resume").Value.String())
	manual := cmd.Flag("manual").Value.String() == "true"

	skills, _ := cmd.Flags().GetStringSlice("skills")
	interests, _ := cmd.Flags().GetStringSlice("interests")
	locations, _ := cmd.Flags().GetStringSlice("locations")
	level, _ := cmd.Flags().GetString("experience-level")

	hasFields := len(skills) > 0 || len(interests) > 0 || len(locations) > 0 || level != ""

	switch {
	case resume != "" && (manual || hasFields):
		return input{}, errors.New("--resume can't be combined with manual profile flags")
	case resume != "":
		return input{resume: resume}, nil
	case hasFields:
		return input{profile: jobs.NewProfile(skills, interests, locations, level)}, nil
	case manual:
		profile, err := manualProfile()
		if err != nil {
			return input{}, err
		}
		return input{profile: profile}, nil
	default:
		return input{}, errors.New("either --resume or manual profile input (--manual, --skills, --interests) is required")
	}
}

// afterFailure asks what to do after a failed run. Switching to manual entry is offered
// only when the resume could not be turned into a profile.
func afterFailure(runErr error, in input) (input, error) {
	var (
		extraction *jobs.ExtractionFailure
		empty      *jobs.EmptyProfileError
		items      []string
	)
	if jobs.Describe(runErr).Retryable {
		items = append(items, PromptRetry)
	}
	switch {
	case errors.As(runErr, &extraction):
		items = append(items, PromptSwitchToManual)
	case errors.As(runErr, &empty):
		items = append(items, PromptEditProfile)
	}
	items = append(items, PromptExit)

	prompt := promptui.Select{Label: "The run failed. What next?", Items: items}
	_, action, err := prompt.Run()
	if err != nil {
		return in, err
	}

	switch action {
	case PromptRetry:
		return in, nil
	case PromptSwitchToManual, PromptEditProfile:
		profile, err := manualProfile()
		if err != nil {
			return in, err
		}
		return input{profile: profile}, nil
	default:
		return in, errExit
	}
}

func resultsMenu(result *pipeline.Result, config *Config, logger *zap.Logger) error {
	items := []string{PromptShowDetails, PromptResultsToFile}
	if config.Exclude.File != "" && result.Len() > 0 {
		items = append(items, PromptAppendToExcludeFile)
	}
	items = append(items, PromptRetry, PromptExit)

	for {
		prompt := promptui.Select{Label: "Proceed?", Items: items}
		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptShowDetails:
			if err := showDetails(result); err != nil {
				return err
			}
		case PromptResultsToFile:
			filename, err := result.DumpToTmpFile()
			if err != nil {
				return fmt.Errorf("dump results to file: %w", err)
			}
			logger.Info("dumping result to file", zap.String("filename", filename))
		case PromptAppendToExcludeFile:
			if err := filtering.AppendToExcludeFile(config.Exclude.File, shown(result)); err != nil {
				return err
			}
			logger.Info("appended to exclude file", zap.String("filename", config.Exclude.File), zap.Int("count", result.Len()))
		case PromptRetry:
			return nil
		default:
			logger.Info("exiting", zap.String("reason", "got exit from prompt"))
			return errExit
		}
	}
}

func showDetails(result *pipeline.Result) error {
	all := append(append([]*jobs.ScoredPosting(nil), result.Jobs...), result.Internships...)

	items := make([]string, 0, len(all)+1)
	for i, sp := range all {
		items = append(items, fmt.Sprintf("%d %.0f%% %s / %s", i+1, sp.Score*100, sp.Posting.Title, orDash(sp.Posting.Company)))
	}
	items = append(items, PromptBack)

	for {
		prompt := promptui.Select{Label: "Choose a posting and press ENTER", Items: items, Size: 10}
		idx, selected, err := prompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}
		renderDetails(os.Stdout, all[idx])
	}
}

func manualProfile() (*jobs.Profile, error) {
	skills, err := promptList("Skills (comma separated)")
	if err != nil {
		return nil, err
	}
	interests, err := promptList("Job interests (comma separated, optional)")
	if err != nil {
		return nil, err
	}
	locations, err := promptList("Preferred locations (comma separated, optional)")
	if err != nil {
		return nil, err
	}

	levelPrompt := promptui.Select{
		Label: "Experience level",
		Items: []string{promptSkipLevel, jobs.LevelEntry, jobs.LevelMid, jobs.LevelSenior},
	}
	_, level, err := levelPrompt.Run()
	if err != nil {
		return nil, err
	}
	if level == promptSkipLevel {
		level = ""
	}

	return jobs.NewProfile(skills, interests, locations, level), nil
}

func promptList(label string) ([]string, error) {
	prompt := promptui.Prompt{Label: label}
	value, err := prompt.Run()
	if err != nil {
		return nil, err
	}
	return jobs.SplitList(value), nil
}

func shown(result *pipeline.Result) []*jobs.Posting {
	postings := make([]*jobs.Posting, 0, result.Len())
	for _, sp := range result.Jobs {
		postings = append(postings, sp.Posting)
	}
	for _, sp := range result.Internships {
		postings = append(postings, sp.Posting)
	}
	return postings
}
