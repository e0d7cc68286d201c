package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/ingestion"
	"github.com/spigell/job-recommender/internal/jobs"
	"github.com/spigell/job-recommender/internal/normalize"
	"github.com/spigell/job-recommender/internal/pipeline"
)

const resumeField = "resume"

// ManualRequest is the manual-entry form.
type ManualRequest struct {
	Skills             []string `json:"skills" binding:"max=100,dive,max=100"`
	JobInterests       []string `json:"job_interests" binding:"max=20,dive,max=100"`
	PreferredLocations []string `json:"preferred_locations" binding:"max=10,dive,max=100"`
	ExperienceLevel    string   `json:"experience_level" binding:"max=50"`
}

// RecommendationResponse is returned by both recommendation endpoints.
type RecommendationResponse struct {
	RunID       string                `json:"run_id"`
	Profile     *jobs.Profile         `json:"profile"`
	Jobs        []*jobs.ScoredPosting `json:"jobs"`
	Internships []*jobs.ScoredPosting `json:"internships"`
	Stats       normalize.Stats       `json:"stats"`
}

// ErrorResponse carries the user-visible message and the suggested recovery action.
type ErrorResponse struct {
	Error     string        `json:"error"`
	Code      string        `json:"code"`
	Recovery  jobs.Recovery `json:"recovery,omitempty"`
	Retryable bool          `json:"retryable"`
	Details   string        `json:"details,omitempty"`
}

// Handler holds API handler dependencies.
type Handler struct {
	recommender Recommender
	logger      *zap.Logger
	version     string
}

func NewHandler(recommender Recommender, logger *zap.Logger, version string) *Handler {
	return &Handler{recommender: recommender, logger: logger, version: version}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "job-recommender",
		"version": h.version,
	})
}

// RecommendManual handles POST /api/v1/recommendations/manual
func (h *Handler) RecommendManual(c *gin.Context) {
	var req ManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Code:    "INVALID_REQUEST",
			Details: err.Error(),
		})
		return
	}

	profile := jobs.NewProfile(req.Skills, req.JobInterests, req.PreferredLocations, req.ExperienceLevel)

	result, err := h.recommender.FromProfile(c.Request.Context(), profile)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, newRecommendationResponse(result))
}

// RecommendResume handles POST /api/v1/recommendations/resume
func (h *Handler) RecommendResume(c *gin.Context) {
	doc, ok := h.readResume(c)
	if !ok {
		return
	}

	result, err := h.recommender.FromDocument(c.Request.Context(), doc)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, newRecommendationResponse(result))
}

// ExtractProfile handles POST /api/v1/profile/extract
func (h *Handler) ExtractProfile(c *gin.Context) {
	doc, ok := h.readResume(c)
	if !ok {
		return
	}

	profile, err := h.recommender.ExtractDocument(c.Request.Context(), doc)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (h *Handler) readResume(c *gin.Context) (*ingestion.Document, bool) {
	header, err := c.FormFile(resumeField)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "A resume file is required in the \"resume\" form field",
			Code:    "MISSING_RESUME",
			Details: err.Error(),
		})
		return nil, false
	}

	if header.Size > ingestion.MaxDocumentSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: "Resume file is too large",
			Code:  "RESUME_TOO_LARGE",
		})
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	defer file.Close()

	doc, err := ingestion.Read(header.Filename, file)
	if err != nil {
		h.fail(c, &jobs.ExtractionFailure{Reason: "resume document could not be read", Cause: err})
		return nil, false
	}

	return doc, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	desc := jobs.Describe(err)
	if desc.HTTPStatus >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("code", desc.Code), zap.Error(err))
	} else {
		h.logger.Info("request rejected", zap.String("code", desc.Code), zap.Error(err))
	}

	c.JSON(desc.HTTPStatus, ErrorResponse{
		Error:     desc.Message,
		Code:      desc.Code,
		Recovery:  desc.Recovery,
		Retryable: desc.Retryable,
	})
}

func newRecommendationResponse(result *pipeline.Result) RecommendationResponse {
	return RecommendationResponse{
		RunID:       result.RunID,
		Profile:     result.Profile,
		Jobs:        nonNil(result.Jobs),
		Internships: nonNil(result.Internships),
		Stats:       result.Stats,
	}
}

func nonNil(list []*jobs.ScoredPosting) []*jobs.ScoredPosting {
	if list == nil {
		return []*jobs.ScoredPosting{}
	}
	return list
}
