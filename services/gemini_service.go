package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const unknownFoodName = "未知食物"

// analyzePrompt asks the model for a bare JSON nutrition estimate. Kept in
// Traditional Chinese because the app's food names and UI are.
const analyzePrompt = `分析這張食物照片，估算其營養成分。

請以 JSON 格式回覆，包含以下欄位：
- name: 食物名稱（繁體中文）
- calories: 估計熱量（kcal，整數）
- protein: 估計蛋白質（公克，整數）
- sodium: 估計鈉含量（毫克，整數）
- water: 如果是飲料，估計水分含量（毫升，整數），否則為 0

注意事項：
1. 請根據照片中食物的份量估算
2. 如果無法辨識食物，name 回傳「未知食物」，其他數值為 0
3. 只回傳 JSON，不要有其他文字

範例回覆：
{"name": "雞胸肉便當", "calories": 650, "protein": 45, "sodium": 800, "water": 0}`

// FoodAnalysis is the sanitized result handed back to the client: name
// always non-empty, every nutrient a non-negative integer.
type FoodAnalysis struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
	Protein  int    `json:"protein"`
	Sodium   int    `json:"sodium"`
	Water    int    `json:"water"`
}

// GeminiService calls the Gemini vision REST API to estimate the nutrition
// of a photographed meal.
type GeminiService struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiService initializes the GeminiService with credentials and HTTP client.
func NewGeminiService() *GeminiService {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiService{
		apiKey:  os.Getenv("GEMINI_API_KEY"),
		model:   model,
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type generateContentRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// AnalyzeFood sends the base64 image to the vision model and returns a
// sanitized nutrition estimate. A reply the model garbles is recovered as
// an "unknown food" zero result, never an error; only transport and quota
// failures surface.
func (s *GeminiService) AnalyzeFood(ctx context.Context, base64Image string) (FoodAnalysis, error) {
	if s.apiKey == "" {
		return FoodAnalysis{}, fmt.Errorf("GEMINI_API_KEY not configured")
	}

	payload := generateContentRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: analyzePrompt},
				{InlineData: &geminiInlineData{MimeType: "image/jpeg", Data: StripDataURI(base64Image)}},
			},
		}},
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return FoodAnalysis{}, fmt.Errorf("failed to marshal gemini payload: %w", err)
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return FoodAnalysis{}, fmt.Errorf("failed to create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return FoodAnalysis{}, fmt.Errorf("failed to call gemini API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FoodAnalysis{}, fmt.Errorf("failed to read gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if isQuotaError(resp.StatusCode, string(body)) {
			return FoodAnalysis{}, fmt.Errorf("%w: gemini API error %d", ErrQuotaExceeded, resp.StatusCode)
		}
		return FoodAnalysis{}, fmt.Errorf("gemini API error %d: %s", resp.StatusCode, string(body))
	}

	var gr generateContentResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return FoodAnalysis{}, fmt.Errorf("failed to parse gemini JSON: %w", err)
	}
	if gr.Error != nil {
		if isQuotaError(gr.Error.Code, gr.Error.Message) {
			return FoodAnalysis{}, fmt.Errorf("%w: %s", ErrQuotaExceeded, gr.Error.Status)
		}
		return FoodAnalysis{}, fmt.Errorf("gemini API error: %s", gr.Error.Message)
	}

	var text strings.Builder
	for _, c := range gr.Candidates {
		for _, p := range c.Content.Parts {
			text.WriteString(p.Text)
		}
	}

	return ParseAnalysis(text.String()), nil
}

func isQuotaError(code int, message string) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	m := strings.ToLower(message)
	return strings.Contains(m, "quota") || strings.Contains(m, "rate")
}

// StripDataURI removes a leading "data:<mime>;base64," prefix so callers can
// send either raw base64 or a full data URI.
func StripDataURI(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.Index(s, ","); i >= 0 {
		return s[i+1:]
	}
	return s
}

// ParseAnalysis extracts the JSON object out of the model's free-text reply
// (which may wrap it in prose or markdown fences) and sanitizes every field.
// Any parse failure yields the unknown-food zero result.
func ParseAnalysis(text string) FoodAnalysis {
	unknown := FoodAnalysis{Name: unknownFoodName}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		log.Printf("gemini: no JSON object in response: %q", text)
		return unknown
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		log.Printf("gemini: unparseable JSON in response: %v", err)
		return unknown
	}

	out := FoodAnalysis{
		Name:     unknownFoodName,
		Calories: sanitizeNumber(raw["calories"]),
		Protein:  sanitizeNumber(raw["protein"]),
		Sodium:   sanitizeNumber(raw["sodium"]),
		Water:    sanitizeNumber(raw["water"]),
	}
	if name, ok := raw["name"].(string); ok && name != "" {
		out.Name = name
	}
	return out
}

// sanitizeNumber coerces whatever the model produced for a nutrient field
// into a non-negative integer, defaulting to 0.
func sanitizeNumber(v any) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
