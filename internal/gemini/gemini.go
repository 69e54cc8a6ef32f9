package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"screenlens/internal/analysis"
	"screenlens/internal/models"
)

const defaultModel = "gemini-2.0-flash"

// Client talks to the Gemini API: file upload, screenshot analysis, and
// relevance ranking. It implements analysis.Remote and search.Ranker.
type Client struct {
	model string
}

// New returns a client for the given model name, falling back to the
// default when empty.
func New(model string) *Client {
	if model == "" {
		model = os.Getenv("GEMINI_MODEL")
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{model: model}
}

func (c *Client) newClient(ctx context.Context) (*genai.Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

// UploadFile pushes a local screenshot to the Gemini Files API and
// returns its remote URI.
func (c *Client) UploadFile(ctx context.Context, path, mimeType string) (string, error) {
	client, err := c.newClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image for upload: %w", err)
	}
	defer f.Close()

	file, err := client.UploadFile(ctx, "", f, &genai.UploadFileOptions{MIMEType: mimeType})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	slog.Info("Uploaded image to Gemini", "path", path, "uri", file.URI)
	return file.URI, nil
}

// Analyze asks the model for OCR text and a visual description of a
// previously uploaded screenshot. Malformed responses go through field
// recovery before giving up; a response with no usable content at all is
// the only failure.
func (c *Client) Analyze(ctx context.Context, fileRef, mimeType string) (analysis.Analysis, error) {
	client, err := c.newClient(ctx)
	if err != nil {
		return analysis.Analysis{}, err
	}
	defer client.Close()

	model := client.GenerativeModel(c.model)
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx,
		genai.FileData{MIMEType: mimeType, URI: fileRef},
		genai.Text(analysisPrompt))
	if err != nil {
		return analysis.Analysis{}, fmt.Errorf("failed to generate analysis: %w", err)
	}

	text, err := candidateText(resp)
	if err != nil {
		return analysis.Analysis{}, err
	}

	result := parseAnalysis(text)
	slog.Info("Analyzed image",
		"file_ref", fileRef,
		"ocr_len", len(result.OCRText),
		"description_len", len(result.Description))
	return result, nil
}

// Search ranks one partition of the corpus against a natural-language
// query. On total parse failure it returns an empty list rather than an
// error; search degrades gracefully.
func (c *Client) Search(ctx context.Context, query string, group []models.ImageRecord) ([]models.SearchResult, error) {
	client, err := c.newClient(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	corpus := make([]corpusEntry, 0, len(group))
	for _, img := range group {
		corpus = append(corpus, corpusEntry{
			ID:          img.ID,
			OCRText:     img.OCRText,
			Description: img.Description,
		})
	}

	corpusJSON, err := json.Marshal(corpus)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal corpus: %w", err)
	}

	model := client.GenerativeModel(c.model)
	model.SetTemperature(0)

	prompt := fmt.Sprintf(searchPromptFormat, query, string(corpusJSON))
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate ranking: %w", err)
	}

	text, err := candidateText(resp)
	if err != nil {
		return nil, err
	}

	results := parseSimilarities(text)
	slog.Info("Ranked search partition", "images", len(group), "matches", len(results))
	return results, nil
}

type corpusEntry struct {
	ID          string `json:"id"`
	OCRText     string `json:"ocr_text"`
	Description string `json:"description"`
}

func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", fmt.Errorf("unexpected response format from Gemini")
}

const analysisPrompt = `You are analyzing a screenshot.

Extract two things:
1. All visible text in the image, exactly as it appears (OCR).
2. A concise visual description of what the screenshot shows: the
   application or website, the layout, and any notable UI elements.

Respond with ONLY a JSON object in this exact format, no markdown fences,
no commentary:
{"ocr_text": "...", "image_description": "..."}`

const searchPromptFormat = `You are ranking screenshots by relevance to a user query.

Query: %s

Each screenshot is described by its OCR text and a visual description:
%s

Score every screenshot from 0.0 to 1.0 for how well it matches the query.
Respond with ONLY a JSON object in this exact format, no markdown fences,
no commentary, including only screenshots with score above 0.1, sorted by
score descending:
{"similarities": [{"image_id": "...", "score": 0.0, "reasoning": "..."}]}`
