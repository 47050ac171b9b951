package service

import (
	"context"
	"encoding/json"
	"strings"

	"pd-smartdoc/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// SAIClient calls the SAI Library template-execution API. Each document type
// has a pre-registered template; execution is a single POST with the user's
// free-text description as the template input.
//
// No client-side timeout or retry: generation can take a while and a hang
// blocks only the requesting call.
type SAIClient struct {
	http      *resty.Client
	templates config.SAIConfig
	logger    *zap.Logger
}

// templateRequest is the SAI execute payload. Input keys are dictated by the
// registered templates and differ per template.
type templateRequest struct {
	Inputs map[string]string `json:"inputs"`
}

// upstreamErrorBody is the error shape SAI usually answers with.
type upstreamErrorBody struct {
	Message string `json:"message"`
}

func NewSAIClient(cfg config.SAIConfig, logger *zap.Logger) *SAIClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-Api-Key", cfg.APIKey)

	return &SAIClient{
		http:      client,
		templates: cfg,
		logger:    logger,
	}
}

// Configured reports whether an API key is present. Callers answer
// service-unavailable when it is not; a missing key is a deployment problem,
// not a crash.
func (c *SAIClient) Configured() bool {
	return c.templates.Configured()
}

// GenerateNorm runs the EDPS template ("norma" input).
func (c *SAIClient) GenerateNorm(ctx context.Context, description string) (json.RawMessage, error) {
	return c.executeTemplate(ctx, c.templates.EDPSTemplate, map[string]string{"norma": description})
}

// GenerateProcedure runs the DVP template, which expects the "teste" input.
func (c *SAIClient) GenerateProcedure(ctx context.Context, description string) (json.RawMessage, error) {
	return c.executeTemplate(ctx, c.templates.DVPTemplate, map[string]string{"teste": description})
}

// GenerateAnalysis runs the DFMEA template, which expects the uppercase
// "DFMEA" input.
func (c *SAIClient) GenerateAnalysis(ctx context.Context, description string) (json.RawMessage, error) {
	return c.executeTemplate(ctx, c.templates.DFMEATemplate, map[string]string{"DFMEA": description})
}

// executeTemplate POSTs /{templateID}/execute and hands back the raw upstream
// body. The response shape varies across templates and languages, so nothing
// is decoded here; extraction is the caller's concern.
func (c *SAIClient) executeTemplate(ctx context.Context, templateID string, inputs map[string]string) (json.RawMessage, error) {
	c.logger.Info("Calling SAI template",
		zap.String("template_id", templateID),
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(templateRequest{Inputs: inputs}).
		Post("/" + templateID + "/execute")
	if err != nil {
		c.logger.Error("SAI call failed", zap.String("template_id", templateID), zap.Error(err))
		return nil, &UpstreamError{Message: err.Error()}
	}

	if resp.IsError() {
		message := strings.TrimSpace(string(resp.Body()))
		var body upstreamErrorBody
		if jsonErr := json.Unmarshal(resp.Body(), &body); jsonErr == nil && body.Message != "" {
			message = body.Message
		}
		c.logger.Error("SAI returned error",
			zap.String("template_id", templateID),
			zap.Int("status", resp.StatusCode()),
			zap.String("message", message),
		)
		return nil, &UpstreamError{Status: resp.StatusCode(), Message: message}
	}

	c.logger.Info("SAI template executed",
		zap.String("template_id", templateID),
		zap.Int("response_bytes", len(resp.Body())),
	)
	return json.RawMessage(resp.Body()), nil
}
