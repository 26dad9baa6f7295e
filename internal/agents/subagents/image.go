package subagents

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/TejasNaik24/GUARDIAN/internal/agentlog"
	"github.com/TejasNaik24/GUARDIAN/internal/agents"
	"github.com/TejasNaik24/GUARDIAN/internal/extract"
	"github.com/TejasNaik24/GUARDIAN/internal/llm"
)

const imagePrompt = `Analyze this medical image.
Identify if it shows a:
1. Medication (pills, bottle, blister pack)
2. Wound / Injury / Rash
3. Medical Device
4. Non-medical object (if so, reject)

Output JSON ONLY:
{
    "type": "medication|wound|device|other",
    "is_medical": true/false,
    "description": "detailed description",
    "severity_hint": "low|medium|high|unknown",
    "detected_text": "any text on labels",
    "recommended_next_steps": ["step 1", "step 2"]
}`

type imageResult struct {
	Type                 string   `json:"type"`
	IsMedical            bool     `json:"is_medical"`
	Description          string   `json:"description"`
	SeverityHint         string   `json:"severity_hint"`
	DetectedText         string   `json:"detected_text"`
	RecommendedNextSteps []string `json:"recommended_next_steps"`
}

// ImageAnalysisAgent describes an attached medical image. A request
// without image data is rejected before any capability call. When the
// vision output cannot be parsed the raw description is kept and the
// image is assumed medical so the answer stays conservative.
type ImageAnalysisAgent struct {
	llm llm.Client
	log *agentlog.Logger
}

// NewImageAnalysisAgent creates an image analysis agent.
func NewImageAnalysisAgent(client llm.Client, log *agentlog.Logger) *ImageAnalysisAgent {
	return &ImageAnalysisAgent{llm: client, log: log}
}

// Name implements agents.Agent.
func (a *ImageAnalysisAgent) Name() string { return agents.ImageAnalysisAgentName }

// Handle implements agents.Agent.
func (a *ImageAnalysisAgent) Handle(ctx context.Context, req *agents.Request) (*agents.Response, error) {
	start := time.Now()

	if req.ImageBase64 == "" {
		return &agents.Response{
			AgentName:  a.Name(),
			OK:         false,
			ResultText: "No image provided.",
		}, nil
	}

	image, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		a.log.LogAgentExecution(a.Name(), req.RequestID(), time.Since(start), false, map[string]any{"error": err.Error()})
		return &agents.Response{
			AgentName:   a.Name(),
			OK:          false,
			ResultText:  "Image data could not be decoded.",
			Diagnostics: map[string]any{"error": err.Error()},
		}, nil
	}

	raw, err := a.llm.AnalyzeImage(ctx, image, imagePrompt)
	if err != nil {
		a.log.LogAgentExecution(a.Name(), req.RequestID(), time.Since(start), false, map[string]any{"error": err.Error()})
		return &agents.Response{
			AgentName:   a.Name(),
			OK:          false,
			ResultText:  fmt.Sprintf("Error analyzing image: %v", err),
			Diagnostics: map[string]any{"error": err.Error()},
		}, nil
	}

	var result imageResult
	if perr := extract.JSON(raw, &result); perr != nil {
		result = imageResult{
			Type:                 "unknown",
			IsMedical:            true,
			Description:          raw,
			SeverityHint:         "unknown",
			RecommendedNextSteps: []string{},
		}
	}

	a.log.LogAgentExecution(a.Name(), req.RequestID(), time.Since(start), true, map[string]any{"type": result.Type})

	return &agents.Response{
		AgentName:  a.Name(),
		OK:         true,
		ResultText: result.Description,
		StructuredData: map[string]any{
			"type":                   result.Type,
			"is_medical":             result.IsMedical,
			"description":            result.Description,
			"severity_hint":          result.SeverityHint,
			"detected_text":          result.DetectedText,
			"recommended_next_steps": result.RecommendedNextSteps,
		},
		Score: 1.0,
	}, nil
}
