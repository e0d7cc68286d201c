package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	_ "embed"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/job-recommender/internal/jobs"
	"github.com/spigell/job-recommender/internal/utils"
)

type jsonGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

//go:embed prompt.md
var promptTemplate string

//go:embed schema.json
var profileSchema string

const (
	defaultMaxLogLength = 200
	// Resumes longer than this are cut before being sent to the model.
	maxInputRunes = 30000
	// Text with a smaller share of letters is treated as binary or OCR garbage.
	minLetterRatio = 0.3
)

var yearsPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// responseSchema mirrors schema.json for the model's structured output mode.
var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"skills": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"job_interests": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"preferred_locations": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"experience": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"min_years": {Type: genai.TypeNumber},
				"max_years": {Type: genai.TypeNumber},
			},
		},
		"experience_level": {
			Type: genai.TypeString,
			Enum: []string{jobs.LevelEntry, jobs.LevelMid, jobs.LevelSenior},
		},
	},
	Required: []string{"skills", "job_interests"},
}

// Extractor builds candidate profiles from resume text with Gemini.
type Extractor struct {
	generator jsonGenerator
	schema    *gojsonschema.Schema
	logger    *zap.Logger
	maxLogLen int
}

// NewExtractor creates an extractor. It fails only if the embedded schema is broken.
func NewExtractor(generator jsonGenerator, logger *zap.Logger, maxLogLength int) (*Extractor, error) {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(profileSchema))
	if err != nil {
		return nil, fmt.Errorf("load profile schema: %w", err)
	}

	return &Extractor{
		generator: generator,
		schema:    schema,
		logger:    logger,
		maxLogLen: maxLogLength,
	}, nil
}

// Extract sends the resume text to the model and normalizes its answer. It never
// retries: the same input usually yields the same malformed answer.
func (e *Extractor) Extract(ctx context.Context, text string) (*jobs.Profile, error) {
	text = strings.TrimSpace(text)
	if !readable(text) {
		return nil, &jobs.ExtractionFailure{Reason: "resume text is empty or not readable"}
	}
	if utf8.RuneCountInString(text) > maxInputRunes {
		text = string([]rune(text)[:maxInputRunes])
	}

	prompt := buildPrompt(text)
	e.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(text, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateJSON(ctx, prompt, responseSchema)
	if err != nil {
		var timeout *jobs.ExternalCallTimeout
		if errors.As(err, &timeout) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &jobs.ExtractionFailure{Reason: "model call failed", Cause: err}
	}

	e.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	profile, err := e.parseProfile(raw)
	if err != nil {
		e.logger.Info("model response rejected", zap.Error(err))
		return nil, err
	}

	return profile, nil
}

type extractedProfile struct {
	Skills             []string `json:"skills"`
	JobInterests       []string `json:"job_interests"`
	PreferredLocations []string `json:"preferred_locations"`
	Experience         any      `json:"experience"`
	ExperienceLevel    *string  `json:"experience_level"`
}

func (e *Extractor) parseProfile(raw string) (*jobs.Profile, error) {
	cleaned := extractJSON(raw)

	result, err := e.schema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, &jobs.ExtractionFailure{Reason: "response is not valid JSON", Cause: err}
	}
	if !result.Valid() {
		return nil, &jobs.ExtractionFailure{Reason: "response does not match the expected shape", Cause: schemaErrors(result)}
	}

	var data extractedProfile
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, &jobs.ExtractionFailure{Reason: "response does not match the expected shape", Cause: err}
	}

	level := ""
	if data.ExperienceLevel != nil {
		level = *data.ExperienceLevel
	}

	profile := jobs.NewProfile(data.Skills, data.JobInterests, data.PreferredLocations, level)
	if len(profile.Skills) == 0 {
		return nil, &jobs.ExtractionFailure{Reason: "no skills found in the resume"}
	}
	profile.ExperienceYears = coerceExperience(data.Experience)

	return profile, nil
}

func buildPrompt(resume string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Extract skills, job_interests, preferred_locations, experience and experience_level as JSON.\n\nResume:\n{{RESUME_TEXT}}"
	}
	return strings.ReplaceAll(template, "{{RESUME_TEXT}}", resume)
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func schemaErrors(result *gojsonschema.Result) error {
	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		messages = append(messages, fmt.Sprintf("%s: %s", field, desc.Description()))
	}
	return errors.New(strings.Join(messages, "; "))
}

// readable rejects empty input and text that is mostly not letters.
func readable(text string) bool {
	if text == "" || !utf8.ValidString(text) {
		return false
	}

	var letters, visible int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		visible++
		if unicode.IsLetter(r) {
			letters++
		}
	}

	return visible > 0 && float64(letters)/float64(visible) >= minLetterRatio
}

// coerceExperience accepts a number, a "3-5 years" string or a min/max object.
func coerceExperience(v any) *jobs.ExperienceRange {
	switch val := v.(type) {
	case float64:
		return newRange(val, val)
	case string:
		numbers := yearsPattern.FindAllString(val, 2)
		switch len(numbers) {
		case 0:
			return nil
		case 1:
			n := coerceFloat(numbers[0])
			return newRange(n, n)
		default:
			return newRange(coerceFloat(numbers[0]), coerceFloat(numbers[1]))
		}
	case map[string]any:
		lo := coerceFloat(val["min_years"])
		hi := coerceFloat(val["max_years"])
		switch {
		case math.IsNaN(lo) && math.IsNaN(hi):
			return nil
		case math.IsNaN(lo):
			lo = hi
		case math.IsNaN(hi):
			hi = lo
		}
		return newRange(lo, hi)
	default:
		return nil
	}
}

func newRange(lo, hi float64) *jobs.ExperienceRange {
	if math.IsNaN(lo) || math.IsNaN(hi) || lo < 0 || hi < 0 {
		return nil
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return &jobs.ExperienceRange{Min: lo, Max: hi}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
