package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/parikshasarathi/sarathi/internal/exam"
	"github.com/parikshasarathi/sarathi/internal/model"
)

const validItem = `{"id":"q1","questionText":"2+2=?","options":["1","2","3","4"],"correctAnswer":3,"explanation":"4"}`

func items(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"id":"q%d","questionText":"प्रश्न %d","options":["क","ख","ग","घ"],"correctAnswer":%d,"explanation":""}`, i, i, i%4)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// fakeOpenAI serves chat completions with content and records the last request.
func fakeOpenAI(t *testing.T, status int, content string) (*httptest.Server, *openai.ChatCompletionRequest) {
	t.Helper()
	var last openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/models"):
			json.NewEncoder(w).Encode(openai.ModelsList{Models: []openai.Model{{ID: "test-model"}}})
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &last)
			if status != http.StatusOK {
				w.WriteHeader(status)
				io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
				ID:     "chatcmpl-1",
				Object: "chat.completion",
				Model:  "test-model",
				Choices: []openai.ChatCompletionChoice{{
					Index:        0,
					Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
					FinishReason: openai.FinishReasonStop,
				}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func newTestClient(url string) *Client {
	c := New(url, "test-key", "test-model", 5*time.Second)
	n := 0
	c.newID = func() string {
		n++
		return fmt.Sprintf("ai-%d", n)
	}
	return c
}

func isFallback(qs []model.Question) bool {
	return len(qs) == 1 && qs[0].ID == FallbackID
}

func TestGenerate(t *testing.T) {
	srv, last := fakeOpenAI(t, http.StatusOK, `{"questions":`+items(3)+`}`)
	c := newTestClient(srv.URL)

	qs := c.Generate(context.Background(), exam.GenerateRequest{
		Subject: "गणित", ClassLevel: "10", Count: 3, Difficulty: model.DifficultyBoard,
	})
	if len(qs) != 3 {
		t.Fatalf("expected 3 questions, got %d: %+v", len(qs), qs)
	}
	if qs[1].QuestionText != "प्रश्न 1" || qs[1].CorrectAnswer != 1 {
		t.Errorf("unexpected question: %+v", qs[1])
	}

	if last.Model != "test-model" {
		t.Errorf("expected model test-model, got %q", last.Model)
	}
	if last.Temperature != temperature {
		t.Errorf("expected temperature %v, got %v", temperature, last.Temperature)
	}
	if len(last.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(last.Messages))
	}
	user := last.Messages[1].Content
	for _, want := range []string{"कक्षा 10", "गणित", "3 प्रश्न", model.DifficultyBoard, "पूरी तरह से हिंदी"} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user)
		}
	}
}

func TestGenerateLanguageSubject(t *testing.T) {
	srv, last := fakeOpenAI(t, http.StatusOK, items(1))
	c := newTestClient(srv.URL)

	c.Generate(context.Background(), exam.GenerateRequest{Subject: "English", ClassLevel: "8", Count: 1})
	user := last.Messages[1].Content
	if !strings.Contains(user, "भाषा विषय (English)") {
		t.Errorf("expected language wording, got:\n%s", user)
	}
	if strings.Contains(user, "पूरी तरह से हिंदी") {
		t.Error("language subject should not be forced into Hindi")
	}
}

func TestGenerateTruncatesToCount(t *testing.T) {
	srv, _ := fakeOpenAI(t, http.StatusOK, items(8))
	qs := newTestClient(srv.URL).Generate(context.Background(), exam.GenerateRequest{Subject: "विज्ञान", ClassLevel: "9", Count: 5})
	if len(qs) != 5 {
		t.Errorf("expected 5 questions, got %d", len(qs))
	}
}

func TestGenerateFallback(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		content string
	}{
		{"server error", http.StatusInternalServerError, ""},
		{"empty content", http.StatusOK, ""},
		{"not json", http.StatusOK, "यह JSON नहीं है"},
		{"empty array", http.StatusOK, "[]"},
		{"empty object", http.StatusOK, "{}"},
		{"three options", http.StatusOK, `[{"id":"x","questionText":"q","options":["a","b","c"],"correctAnswer":0}]`},
		{"answer out of range", http.StatusOK, `[{"id":"x","questionText":"q","options":["a","b","c","d"],"correctAnswer":4}]`},
		{"blank text", http.StatusOK, `[{"id":"x","questionText":" ","options":["a","b","c","d"],"correctAnswer":1}]`},
		{"string answer", http.StatusOK, `[{"id":"x","questionText":"q","options":["a","b","c","d"],"correctAnswer":"1"}]`},
		{"one bad item", http.StatusOK, `[` + validItem + `,{"questionText":"q","options":["a","","c","d"],"correctAnswer":1}]`},
		{"missing answer", http.StatusOK, `[{"id":"x","questionText":"q","options":["a","b","c","d"],"explanation":"e"}]`},
		{"null answer", http.StatusOK, `[{"id":"x","questionText":"q","options":["a","b","c","d"],"correctAnswer":null}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := fakeOpenAI(t, tt.status, tt.content)
			qs := newTestClient(srv.URL).Generate(context.Background(), exam.GenerateRequest{Subject: "गणित", ClassLevel: "10", Count: 5})
			if !isFallback(qs) {
				t.Fatalf("expected fallback, got %+v", qs)
			}
			if !strings.Contains(qs[0].QuestionText, "कक्षा 10 गणित") {
				t.Errorf("fallback should name class and subject: %q", qs[0].QuestionText)
			}
		})
	}
}

func TestGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(srv.URL)
	c.timeout = 50 * time.Millisecond

	start := time.Now()
	qs := c.Generate(context.Background(), exam.GenerateRequest{Subject: "गणित", ClassLevel: "10", Count: 2})
	if !isFallback(qs) {
		t.Errorf("expected fallback on timeout, got %+v", qs)
	}
	if time.Since(start) > time.Second {
		t.Errorf("timeout not applied, took %v", time.Since(start))
	}
}

func TestPing(t *testing.T) {
	srv, _ := fakeOpenAI(t, http.StatusOK, "")
	if err := newTestClient(srv.URL).Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}

	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	if err := newTestClient(dead.URL).Ping(context.Background()); err == nil {
		t.Error("expected ping error for closed server")
	}
}

func TestParseQuestions(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"bare array", "[" + validItem + "]", 1, false},
		{"wrapped", `{"questions":[` + validItem + `,` + validItem + `]}`, 2, false},
		{"fenced json", "```json\n[" + validItem + "]\n```", 1, false},
		{"fenced plain", "```\n{\"questions\":[" + validItem + "]}\n```", 1, false},
		{"fenced one line", "```json[" + validItem + "]```", 1, false},
		{"whitespace", "\n  [" + validItem + "]  \n", 1, false},
		{"blank", "   ", 0, true},
		{"truncated", "[" + validItem, 0, true},
		{"wrong shape", `{"items":[` + validItem + `]}`, 0, true},
		{"missing answer", `[{"id":"q1","questionText":"2+2?","options":["1","2","3","4"],"explanation":"x"}]`, 0, true},
		{"answer zero", `[{"id":"q1","questionText":"2+2?","options":["4","2","3","1"],"correctAnswer":0}]`, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs, err := parseQuestions(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseQuestions() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(qs) != tt.want {
				t.Errorf("expected %d questions, got %d", tt.want, len(qs))
			}
		})
	}
}

func TestAssignIDs(t *testing.T) {
	qs := []model.Question{{ID: "a"}, {ID: ""}, {ID: "a"}, {ID: " "}, {ID: FallbackID}, {ID: "b"}}
	n := 0
	assignIDs(qs, func() string {
		n++
		return fmt.Sprintf("ai-%d", n)
	})

	want := []string{"a", "ai-1", "ai-2", "ai-3", "ai-4", "b"}
	for i, q := range qs {
		if q.ID != want[i] {
			t.Errorf("qs[%d].ID = %q, want %q", i, q.ID, want[i])
		}
	}
}

func TestFallback(t *testing.T) {
	q := Fallback("7", "संस्कृत")
	if err := model.ValidateQuestion(q); err != nil {
		t.Errorf("fallback must be a valid question: %v", err)
	}
	if q.ID != FallbackID || q.CorrectAnswer != 0 || q.Explanation != "यह एक अस्थाई त्रुटि है।" {
		t.Errorf("unexpected fallback: %+v", q)
	}
}
