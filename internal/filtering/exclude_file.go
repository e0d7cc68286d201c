package filtering

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/jobs"
)

// ExcludeFileName is the name of the exclude file step.
const ExcludeFileName = "exclude_file"

type excludeFileFilter struct {
	path     string
	urls     map[string]struct{}
	disabled string
}

// NewExcludeFile creates a filter that removes postings whose application URL is listed
// in the file, one URL per line. Empty lines and lines starting with '#' are ignored.
// An empty path or a file that does not exist yet yields a filter that keeps everything.
func NewExcludeFile(path string) (Filter, error) {
	f := &excludeFileFilter{path: strings.TrimSpace(path), urls: map[string]struct{}{}}
	if f.path == "" {
		return f, nil
	}

	file, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open exclude file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f.urls[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read exclude file: %w", err)
	}

	return f, nil
}

// AppendToExcludeFile adds the application URLs of postings to the exclude file,
// creating it when needed, so they are skipped on the next run.
func AppendToExcludeFile(path string, postings []*jobs.Posting) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("exclude file is not configured")
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open exclude file: %w", err)
	}

	w := bufio.NewWriter(file)
	for _, p := range postings {
		if p.ApplicationURL == "" {
			continue
		}
		fmt.Fprintf(w, "%s\n", p.ApplicationURL)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("write exclude file: %w", err)
	}

	return file.Close()
}

func (f *excludeFileFilter) Name() string { return ExcludeFileName }

func (f *excludeFileFilter) Disable(reason string) { f.disabled = reason }

func (f *excludeFileFilter) IsEnabled() bool { return f.disabled == "" }

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, postings []*jobs.Posting) ([]*jobs.Posting, Step, error) {
	initial := len(postings)
	if len(f.urls) == 0 {
		return postings, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	left, dropped := keep(postings, func(p *jobs.Posting) bool {
		_, listed := f.urls[p.ApplicationURL]
		return !listed
	})

	if deps.Logger != nil && dropped > 0 {
		deps.Logger.Info("excluding postings based on exclude file",
			zap.String("path", f.path),
			zap.Int("excluded", dropped),
			zap.Int("postings_left", len(left)),
		)
	}

	return left, Step{Initial: initial, Dropped: dropped, Left: len(left)}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{"urls": itoa(len(f.urls))}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.disabled, Details: details}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
