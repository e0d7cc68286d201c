package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spigell/job-recommender/internal/jobs"
	"github.com/spigell/job-recommender/internal/pipeline"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func render(w io.Writer, result *pipeline.Result, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case outputText, "":
		renderProfile(w, result.Profile)
		renderSection(w, "Jobs", result.Jobs)
		renderSection(w, "Internships", result.Internships)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func renderProfile(w io.Writer, profile *jobs.Profile) {
	fmt.Fprintf(w, "Skills: %s\n", strings.Join(profile.Skills, ", "))
	if len(profile.JobInterests) > 0 {
		fmt.Fprintf(w, "Interests: %s\n", strings.Join(profile.JobInterests, ", "))
	}
	if len(profile.PreferredLocations) > 0 {
		fmt.Fprintf(w, "Locations: %s\n", strings.Join(profile.PreferredLocations, ", "))
	}
	if profile.ExperienceYears != nil {
		fmt.Fprintf(w, "Experience: %g-%g years\n", profile.ExperienceYears.Min, profile.ExperienceYears.Max)
	}
	if profile.ExperienceLevel != "" {
		fmt.Fprintf(w, "Level: %s\n", profile.ExperienceLevel)
	}
}

func renderSection(w io.Writer, title string, scored []*jobs.ScoredPosting) {
	fmt.Fprintf(w, "\n%s (%d)\n", title, len(scored))
	if len(scored) == 0 {
		fmt.Fprintln(w, "  nothing found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  #\tSCORE\tTITLE\tCOMPANY\tLOCATION\tSOURCE")
	for i, sp := range scored {
		p := sp.Posting
		fmt.Fprintf(tw, "  %d\t%.0f%%\t%s\t%s\t%s\t%s\n",
			i+1, sp.Score*100, p.Title, orDash(p.Company), orDash(p.Location), p.Platform)
	}
	tw.Flush()
}

func renderDetails(w io.Writer, sp *jobs.ScoredPosting) {
	p := sp.Posting
	fmt.Fprintf(w, "\n%s\n", p.Title)
	fmt.Fprintf(w, "  Company:   %s\n", orDash(p.Company))
	fmt.Fprintf(w, "  Location:  %s\n", orDash(strings.Join(locations(p), "; ")))
	if p.Salary != "" {
		fmt.Fprintf(w, "  Salary:    %s\n", p.Salary)
	}
	fmt.Fprintf(w, "  Source:    %s (%s)\n", p.Platform, p.Source)
	fmt.Fprintf(w, "  Score:     %.2f\n", sp.Score)
	fmt.Fprintf(w, "  Why:       %s\n", sp.Rationale)
	if p.Snippet != "" {
		fmt.Fprintf(w, "  Snippet:   %s\n", p.Snippet)
	}
	fmt.Fprintf(w, "  Apply:     %s\n", p.ApplicationURL)
}

func locations(p *jobs.Posting) []string {
	if len(p.Locations) > 0 {
		return p.Locations
	}
	if p.Location != "" {
		return []string{p.Location}
	}
	return nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
