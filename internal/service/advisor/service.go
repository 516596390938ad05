package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/catalog"
	"github.com/mamadbah2/farmhub/internal/domain/models"
)

// LLM completes a single prompt.
type LLM interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// MaxRecommendations caps the crop suggestion list.
const MaxRecommendations = 10

var jsonArray = regexp.MustCompile(`\[[\s\S]*\]`)

var errNoArray = errors.New("no JSON array in reply")

// ErrAssistantUnavailable is returned by Ask when no model is configured.
var ErrAssistantUnavailable = fmt.Errorf("%w: ai assistant is not configured", models.ErrUpstream)

const systemPrompt = "You are an agronomist advising smallholder farmers in India. " +
	"Answer practically and concisely. When asked for a list, reply with a JSON array only."

// Service proxies farming questions to an LLM.
type Service struct {
	llm     LLM
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewService wires an advisor. llm may be nil, in which case list endpoints
// serve their fallbacks.
func NewService(llm LLM, cat *catalog.Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &Service{llm: llm, catalog: cat, logger: logger}
}

// RecommendCrops asks the model for crops suited to a farm. Any failure
// yields the static list with Source set to fallback.
func (s *Service) RecommendCrops(ctx context.Context, req models.CropRecommendationRequest) (*models.CropRecommendations, error) {
	if strings.TrimSpace(req.City) == "" {
		return nil, fmt.Errorf("%w: city is required", models.ErrInvalidInput)
	}

	fallback := &models.CropRecommendations{
		Source:          models.SourceFallback,
		Recommendations: s.catalog.FallbackRecommendations(),
	}
	if s.llm == nil {
		return fallback, nil
	}

	reply, err := s.llm.Complete(ctx, systemPrompt, cropPrompt(req))
	if err != nil {
		s.logger.Warn("crop recommendation call failed, using fallback", zap.Error(err))
		return fallback, nil
	}

	var recs []models.CropRecommendation
	if err := extractArray(reply, &recs); err != nil {
		s.logger.Warn("unparseable crop recommendations, using fallback", zap.Error(err))
		return fallback, nil
	}

	cleaned := make([]models.CropRecommendation, 0, len(recs))
	for _, r := range recs {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			continue
		}
		cleaned = append(cleaned, r)
		if len(cleaned) == MaxRecommendations {
			break
		}
	}
	if len(cleaned) == 0 {
		s.logger.Warn("empty crop recommendations, using fallback")
		return fallback, nil
	}

	return &models.CropRecommendations{Source: models.SourceAI, Recommendations: cleaned}, nil
}

// Ask answers a free-form question.
func (s *Service) Ask(ctx context.Context, req models.AskRequest) (*models.AskResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", models.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, ErrAssistantUnavailable
	}

	prompt := question
	if c := strings.TrimSpace(req.Context); c != "" {
		prompt = fmt.Sprintf("Context about the farm:\n%s\n\nQuestion:\n%s", c, question)
	}

	answer, err := s.llm.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	return &models.AskResponse{Answer: answer}, nil
}

// RecommendPesticides lists treatments for a crop problem. Without a model
// or a usable reply the result is empty with Source set to fallback.
func (s *Service) RecommendPesticides(ctx context.Context, req models.PesticideRequest) (*models.PesticideRecommendations, error) {
	crop := strings.TrimSpace(req.CropName)
	if crop == "" {
		return nil, fmt.Errorf("%w: cropName is required", models.ErrInvalidInput)
	}

	fallback := &models.PesticideRecommendations{
		Source:  models.SourceFallback,
		Results: []models.PesticideRecommendation{},
	}
	if s.llm == nil {
		return fallback, nil
	}

	problem := strings.TrimSpace(req.DiseaseName)
	if problem == "" {
		problem = "common pests and diseases"
	}
	prompt := fmt.Sprintf(`Recommend up to 5 pesticides or treatments for %s affected by %s.
Reply with a JSON array of objects with keys: name, type (chemical|organic|biological), dosage, application, precautions.`, crop, problem)

	reply, err := s.llm.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		s.logger.Warn("pesticide recommendation call failed", zap.Error(err))
		return fallback, nil
	}

	var results []models.PesticideRecommendation
	if err := extractArray(reply, &results); err != nil || len(results) == 0 {
		s.logger.Warn("unusable pesticide recommendations", zap.Error(err))
		return fallback, nil
	}
	return &models.PesticideRecommendations{Source: models.SourceAI, Results: results}, nil
}

func extractArray(reply string, out any) error {
	raw := jsonArray.FindString(reply)
	if raw == "" {
		return errNoArray
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode array: %w", err)
	}
	return nil
}

func cropPrompt(req models.CropRecommendationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest up to %d crops for a farm near %s", MaxRecommendations, strings.TrimSpace(req.City))
	if req.State != "" {
		fmt.Fprintf(&b, ", %s", req.State)
	}
	b.WriteString(".\n")
	if req.SoilType != "" {
		fmt.Fprintf(&b, "Soil: %s.\n", req.SoilType)
	}
	if req.Season != "" {
		fmt.Fprintf(&b, "Season: %s.\n", req.Season)
	}
	if req.FarmingType != "" {
		fmt.Fprintf(&b, "Farming type: %s.\n", req.FarmingType)
	}
	if req.LandSize > 0 {
		fmt.Fprintf(&b, "Land size: %g acres.\n", req.LandSize)
	}
	b.WriteString("Reply with a JSON array of objects with keys: name, season, duration (days, integer), " +
		"expectedYield, waterNeed (low|medium|high), reason, profitability (low|medium|high).")
	return b.String()
}
