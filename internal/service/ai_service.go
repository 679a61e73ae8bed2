package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-doctor-helper/internal/domain"

	"cloud.google.com/go/vertexai/genai"
	"golang.org/x/text/language"
)

const generationModel = "gemini-2.0-flash-001"

const assistantSystemPrompt = "You are a careful medical information assistant. " +
	"Answer health questions in clear, plain language, explain relevant context, and always remind the user that you are not a substitute for a licensed physician. " +
	"If the question suggests an emergency, tell the user to seek immediate medical care. " +
	"Do not invent diagnoses or medication dosages."

// Languages the assistant is allowed to answer in. Requests in any other
// language fall back to English.
var supportedLanguages = []language.Tag{
	language.English,
	language.Spanish,
	language.Portuguese,
	language.French,
	language.German,
	language.Italian,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

type aiService struct {
	logger domain.Logger

	projectID string
	location  string

	genaiClient *genai.Client
}

func NewAIService(
	logger domain.Logger,
	projectID string,
	location string,
) (domain.AIService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}

	return &aiService{
		logger:      logger,
		projectID:   projectID,
		location:    location,
		genaiClient: client,
	}, nil
}

// Chat answers one conversational turn with prior history.
func (s *aiService) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	lang := resolveLanguage(req.Language)

	model := s.genaiClient.GenerativeModel(generationModel)
	model.SetTemperature(0.4)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(assistantSystemPrompt + languageInstruction(lang))},
	}

	chat := model.StartChat()
	for _, m := range req.History {
		role := "user"
		if m.Role == "model" {
			role = "model"
		}
		chat.History = append(chat.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	resp, err := chat.SendMessage(ctx, genai.Text(req.Prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini call failed: %w", err)
	}

	answer, tokens, err := collectText(resp)
	if err != nil {
		return nil, err
	}

	return &domain.ChatResponse{
		Message:    answer,
		PlainText:  StripMarkdown(answer),
		Language:   lang.String(),
		TokenCount: tokens,
	}, nil
}

// AnalyzeImage runs a multimodal prompt over an uploaded image (lab result
// photo, skin condition, etc).
func (s *aiService) AnalyzeImage(ctx context.Context, req domain.ImageAnalysisRequest) (*domain.ChatResponse, error) {
	lang := resolveLanguage(req.Language)

	prompt := req.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = "Describe what this medical image shows and point out anything a doctor should look at."
	}

	model := s.genaiClient.GenerativeModel(generationModel)
	model.SetTemperature(0.2)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(assistantSystemPrompt + languageInstruction(lang))},
	}

	format := strings.TrimPrefix(req.MimeType, "image/")
	resp, err := model.GenerateContent(ctx,
		genai.ImageData(format, req.ImageData),
		genai.Text(prompt),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini call failed: %w", err)
	}

	answer, tokens, err := collectText(resp)
	if err != nil {
		return nil, err
	}

	return &domain.ChatResponse{
		Message:    answer,
		PlainText:  StripMarkdown(answer),
		Language:   lang.String(),
		TokenCount: tokens,
	}, nil
}

// AnalyzeHealthReport produces a structured summary of extracted report text.
func (s *aiService) AnalyzeHealthReport(ctx context.Context, req domain.HealthReportRequest) (*domain.HealthReportAnalysis, error) {
	lang := resolveLanguage(req.Language)

	model := s.genaiClient.GenerativeModel(generationModel)
	model.SetTemperature(0.2)
	model.GenerationConfig.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(assistantSystemPrompt + languageInstruction(lang))},
	}

	prompt := "Analyze the following health report. Respond with a JSON object with keys " +
		`"summary" (string), "key_findings" (array of strings) and "recommendations" (array of strings).` +
		"\n\nReport:\n" + req.ReportText

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini call failed: %w", err)
	}

	raw, _, err := collectText(resp)
	if err != nil {
		return nil, err
	}

	var analysis domain.HealthReportAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		// Model occasionally ignores the JSON instruction; degrade to a plain summary.
		s.logger.Warn("Report analysis was not valid JSON, returning raw text", "error", err)
		analysis = domain.HealthReportAnalysis{Summary: StripMarkdown(raw)}
	}
	analysis.Language = lang.String()
	return &analysis, nil
}

// collectText concatenates the text parts of the first candidate.
func collectText(resp *genai.GenerateContentResponse) (string, int, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", 0, fmt.Errorf("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return sb.String(), tokens, nil
}

// resolveLanguage matches a requested BCP 47 tag (or Accept-Language value)
// against the supported set, defaulting to English.
func resolveLanguage(requested string) language.Tag {
	if strings.TrimSpace(requested) == "" {
		return language.English
	}
	tags, _, err := language.ParseAcceptLanguage(requested)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, index, _ := languageMatcher.Match(tags...)
	return supportedLanguages[index]
}

func languageInstruction(lang language.Tag) string {
	if lang == language.English {
		return ""
	}
	return " Answer in the language with BCP 47 tag " + lang.String() + "."
}
