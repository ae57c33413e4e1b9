package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"elena-agent/domain"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

type AIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

type AIService struct {
	apiKey     string
	apiURL     string
	model      string
	maxTokens  int
	enabled    bool
	httpClient *http.Client
}

type OpenAIRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OpenAIResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// NewAIService builds the narration client. Without an API key every call
// uses the deterministic fallback text.
func NewAIService(cfg AIConfig) *AIService {
	apiURL := cfg.BaseURL
	if apiURL == "" {
		apiURL = defaultOpenAIURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 300
	}

	return &AIService{
		apiKey:    cfg.APIKey,
		apiURL:    apiURL,
		model:     model,
		maxTokens: maxTokens,
		enabled:   cfg.APIKey != "",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

const elenaSystemPrompt = "You are Elena, a home-buying assistant for first-time buyers. " +
	"You explain affordability results in plain, warm, concise English. " +
	"Never change or invent numbers: only restate the figures you are given. " +
	"Always finish with the single recommended next step."

// ExplainEvaluation narrates an evaluation for the buyer. LLM failures fall
// back to a template; only a cancelled context is returned as an error.
func (s *AIService) ExplainEvaluation(
	ctx context.Context,
	question string,
	firstName string,
	result domain.EvaluationResult,
) (string, error) {
	if !s.enabled {
		return FallbackExplanation(firstName, result), nil
	}

	prompt := buildExplanationPrompt(question, firstName, result)
	explanation, err := s.callLLM(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return "", eris.Wrap(ctx.Err(), "ai: explain")
		}
		collaboratorFailures.WithLabelValues("ai").Inc()
		zap.L().Warn("ai explanation failed, using fallback", zap.Error(err))
		return FallbackExplanation(firstName, result), nil
	}
	return explanation, nil
}

func buildExplanationPrompt(question, firstName string, r domain.EvaluationResult) string {
	var b strings.Builder
	if firstName != "" {
		fmt.Fprintf(&b, "Buyer first name: %s\n", firstName)
	}
	if question != "" {
		fmt.Fprintf(&b, "Buyer question: %q\n", question)
	}
	fmt.Fprintf(&b, "\nVERDICT: %s (grade %s)\n", r.Verdict.Status, r.Verdict.Grade)
	for _, note := range r.Verdict.Notes {
		fmt.Fprintf(&b, "- %s\n", note)
	}
	if r.Verdict.HousingCap != nil {
		fmt.Fprintf(&b, "Housing cap: $%s/month\n", money(*r.Verdict.HousingCap))
	}
	if r.Verdict.Residual != nil {
		fmt.Fprintf(&b, "Residual after expenses and housing: $%s/month\n", money(*r.Verdict.Residual))
	}
	if m := r.Mortgage; m.AllInMonthly != nil {
		fmt.Fprintf(&b, "Estimated all-in housing cost: $%s/month (source: %s)\n", money(*m.AllInMonthly), m.Source)
		if m.APRAssumed != nil {
			fmt.Fprintf(&b, "Assumed APR: %.2f%% over %d years\n", *m.APRAssumed*100, m.TermYears)
		}
	}
	if q := r.Quick; q != nil {
		fmt.Fprintf(&b, "Quick max price: $%s with 0%% down, $%s with 5%% down\n",
			money(q.QuickMaxPrice.Price0Down), money(q.QuickMaxPrice.Price5Down))
	}
	if len(r.MissingInputs) > 0 {
		fmt.Fprintf(&b, "Missing inputs: %s\n", strings.Join(r.MissingInputs, ", "))
	}
	fmt.Fprintf(&b, "\nNEXT ACTION: %s. %s\n", r.NextAction.Type, r.NextAction.Why)
	if target, ok := r.NextAction.Target["target_price"].(float64); ok {
		fmt.Fprintf(&b, "Target price: $%s\n", money(target))
	}
	b.WriteString("\nWrite 3-4 sentences for the buyer.")
	return b.String()
}

func (s *AIService) callLLM(ctx context.Context, prompt string) (string, error) {
	reqBody := OpenAIRequest{
		Model: s.model,
		Messages: []Message{
			{Role: "system", Content: elenaSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens: s.maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", eris.Wrap(err, "ai: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", eris.Wrap(err, "ai: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "ai: do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", eris.Errorf("ai: api error (status %d): %s", resp.StatusCode, string(body))
	}

	var openAIResp OpenAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&openAIResp); err != nil {
		return "", eris.Wrap(err, "ai: decode response")
	}
	if len(openAIResp.Choices) == 0 || strings.TrimSpace(openAIResp.Choices[0].Message.Content) == "" {
		return "", eris.New("ai: empty response")
	}

	return strings.TrimSpace(openAIResp.Choices[0].Message.Content), nil
}

// FallbackExplanation is the template narration used without an LLM.
func FallbackExplanation(firstName string, r domain.EvaluationResult) string {
	greeting := "Here's where things stand."
	if firstName != "" {
		greeting = fmt.Sprintf("Hi %s, here's where things stand.", firstName)
	}

	var body string
	switch r.Verdict.Status {
	case domain.StatusInsufficient:
		body = "I can't rate this plan yet."
		if len(r.MissingInputs) > 0 {
			body = fmt.Sprintf("I can't rate this plan yet; I still need: %s.", strings.Join(r.MissingInputs, ", "))
		}
		if q := r.Quick; q != nil {
			body += fmt.Sprintf(" Based on income alone, a rough ceiling is about $%s with 0%% down.", money(q.QuickMaxPrice.Price0Down))
		}
	case domain.StatusNoGo:
		body = fmt.Sprintf("At about $%s/month all-in, this home stretches past what your income supports (grade %s).",
			money(deref(r.Mortgage.AllInMonthly)), r.Verdict.Grade)
		if target, ok := r.NextAction.Target["target_price"].(float64); ok {
			body += fmt.Sprintf(" A price near $%s would bring housing back under the cap.", money(target))
		}
	case domain.StatusCaution:
		body = fmt.Sprintf("At about $%s/month all-in this can work, but the monthly buffer is thin (grade %s).",
			money(deref(r.Mortgage.AllInMonthly)), r.Verdict.Grade)
	default:
		body = fmt.Sprintf("At about $%s/month all-in, this plan fits comfortably (grade %s).",
			money(deref(r.Mortgage.AllInMonthly)), r.Verdict.Grade)
	}

	return strings.Join([]string{greeting, body, "Next step: " + r.NextAction.Why}, " ")
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

var amountPrinter = message.NewPrinter(language.English)

// money formats a whole-unit amount with thousands separators.
func money(v float64) string {
	return amountPrinter.Sprintf("%d", roundWhole(v).IntPart())
}
