package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseAnalysisPlainJSON(t *testing.T) {
	got := ParseAnalysis(`{"name": "雞胸肉便當", "calories": 650, "protein": 45, "sodium": 800, "water": 0}`)
	if got.Name != "雞胸肉便當" || got.Calories != 650 || got.Protein != 45 || got.Sodium != 800 || got.Water != 0 {
		t.Errorf("got %+v", got)
	}
}

func TestParseAnalysisMarkdownFences(t *testing.T) {
	text := "好的，以下是分析結果：\n```json\n{\"name\": \"滷肉飯\", \"calories\": 550, \"protein\": 20, \"sodium\": 900, \"water\": 0}\n```\n希望對您有幫助。"
	got := ParseAnalysis(text)
	if got.Name != "滷肉飯" || got.Calories != 550 {
		t.Errorf("got %+v", got)
	}
}

func TestParseAnalysisSanitizesFields(t *testing.T) {
	// negative clamps to 0, non-numeric string coerces to 0, valid passes through
	got := ParseAnalysis(`{"name":"雞腿","calories":-10,"protein":"abc","sodium":800,"water":0}`)
	if got.Name != "雞腿" {
		t.Errorf("name = %q", got.Name)
	}
	if got.Calories != 0 {
		t.Errorf("calories = %d, want clamped 0", got.Calories)
	}
	if got.Protein != 0 {
		t.Errorf("protein = %d, want 0 for non-numeric", got.Protein)
	}
	if got.Sodium != 800 {
		t.Errorf("sodium = %d, want 800", got.Sodium)
	}
}

func TestParseAnalysisNumericStrings(t *testing.T) {
	got := ParseAnalysis(`{"name":"可樂","calories":"140","protein":0,"sodium":45,"water":330.7}`)
	if got.Calories != 140 {
		t.Errorf("calories = %d, want 140 from numeric string", got.Calories)
	}
	if got.Water != 330 {
		t.Errorf("water = %d, want 330 truncated", got.Water)
	}
}

func TestParseAnalysisGarbage(t *testing.T) {
	for _, text := range []string{"", "我看不出這是什麼食物", "{broken", "{\"name\":}"} {
		got := ParseAnalysis(text)
		if got.Name != "未知食物" {
			t.Errorf("%q: name = %q, want 未知食物", text, got.Name)
		}
		if got.Calories != 0 || got.Protein != 0 || got.Sodium != 0 || got.Water != 0 {
			t.Errorf("%q: nutrients must all be zero, got %+v", text, got)
		}
	}
}

func TestStripDataURI(t *testing.T) {
	if got := StripDataURI("data:image/jpeg;base64,AAAA"); got != "AAAA" {
		t.Errorf("got %q", got)
	}
	if got := StripDataURI("AAAA"); got != "AAAA" {
		t.Errorf("raw base64 must pass through, got %q", got)
	}
}

func testGeminiService(baseURL string) *GeminiService {
	return &GeminiService{
		apiKey:  "test-key",
		model:   "gemini-1.5-flash",
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func geminiReply(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
}

func TestAnalyzeFoodHappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("request body not JSON: %v", err)
		}
		json.NewEncoder(w).Encode(geminiReply(`{"name":"牛肉麵","calories":600,"protein":30,"sodium":1500,"water":400}`))
	}))
	defer srv.Close()

	got, err := testGeminiService(srv.URL).AnalyzeFood(context.Background(), "data:image/jpeg;base64,AAAA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "牛肉麵" || got.Calories != 600 || got.Sodium != 1500 {
		t.Errorf("got %+v", got)
	}
}

func TestAnalyzeFoodQuotaError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"status":"RESOURCE_EXHAUSTED","message":"Quota exceeded"}}`))
	}))
	defer srv.Close()

	_, err := testGeminiService(srv.URL).AnalyzeFood(context.Background(), "AAAA")
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("err = %v, want ErrQuotaExceeded", err)
	}
}

func TestAnalyzeFoodGarbledReplyRecovers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiReply("抱歉，我無法辨識這張照片。"))
	}))
	defer srv.Close()

	got, err := testGeminiService(srv.URL).AnalyzeFood(context.Background(), "AAAA")
	if err != nil {
		t.Fatalf("garbled reply must recover, got error: %v", err)
	}
	if got.Name != "未知食物" {
		t.Errorf("got %+v, want unknown-food fallback", got)
	}
}
