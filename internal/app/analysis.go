package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Aadit-17/RevEase/internal/domain"
)

// Analyzer wraps the language-model port with the deterministic fallbacks.
// Both Classify and SuggestReply make at most one remote attempt and never
// return an error: any model failure resolves to the rating-based result.
type Analyzer struct {
	llm domain.Completer // nil means no credential configured
}

func NewAnalyzer(llm domain.Completer) *Analyzer { return &Analyzer{llm: llm} }

const sentimentPromptTmpl = `Analyze the sentiment of the following customer review:

Location: %s
Rating: %d/5
Review: %s

Provide analysis in JSON format:
{
    "tags": {
        "sentiment": "positive/neutral/negative"
    },
    "reasoning_log": "brief explanation of your analysis"
}`

const replyPromptTmpl = `Generate an empathetic reply to the following customer review:

Location: %s
Rating: %d/5
Review: %s

Requirements:
1. Be empathetic and professional
2. Address specific points mentioned in the review
3. Offer solutions if negative, or appreciation if positive
4. Keep it concise (2-3 sentences)
5. Do not make up facts about policies or procedures

Respond with just the reply text.`

type modelAnalysis struct {
	Tags struct {
		Sentiment string `json:"sentiment"`
	} `json:"tags"`
	ReasoningLog string `json:"reasoning_log"`
}

var validSentiments = map[string]bool{
	"positive": true,
	"neutral":  true,
	"negative": true,
}

// Classify returns the review's sentiment. The model response must parse as
// the expected JSON shape and carry one of the three labels; everything else
// falls back to the rating heuristic.
func (a *Analyzer) Classify(ctx context.Context, rv domain.Review) domain.Analysis {
	if a.llm == nil {
		return ratingAnalysis(rv)
	}
	prompt := fmt.Sprintf(sentimentPromptTmpl, rv.Location, rv.Rating, rv.Text)
	out, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return ratingAnalysis(rv)
	}
	var parsed modelAnalysis
	if err := json.Unmarshal([]byte(stripFences(out)), &parsed); err != nil {
		return ratingAnalysis(rv)
	}
	sentiment := strings.ToLower(strings.TrimSpace(parsed.Tags.Sentiment))
	if !validSentiments[sentiment] {
		return ratingAnalysis(rv)
	}
	return domain.Analysis{Sentiment: sentiment, Reasoning: parsed.ReasoningLog}
}

// SuggestReply returns a short empathetic reply, verbatim from the model when
// it answers, otherwise the rating-keyed template.
func (a *Analyzer) SuggestReply(ctx context.Context, rv domain.Review) domain.ReplySuggestion {
	if a.llm == nil {
		return templateReply(rv)
	}
	prompt := fmt.Sprintf(replyPromptTmpl, rv.Location, rv.Rating, rv.Text)
	out, err := a.llm.Complete(ctx, prompt)
	if err != nil || strings.TrimSpace(out) == "" {
		return templateReply(rv)
	}
	return domain.ReplySuggestion{
		Reply:     out,
		Reasoning: "Generated empathetic response to customer review",
	}
}

// ratingAnalysis is the rating-threshold heuristic: >=4 positive, <=2
// negative, otherwise neutral.
func ratingAnalysis(rv domain.Review) domain.Analysis {
	var sentiment string
	switch {
	case rv.Rating >= 4:
		sentiment = "positive"
	case rv.Rating <= 2:
		sentiment = "negative"
	default:
		sentiment = "neutral"
	}
	return domain.Analysis{
		Sentiment: sentiment,
		Reasoning: fmt.Sprintf("Fallback analysis based on %d star rating", rv.Rating),
	}
}

func templateReply(rv domain.Review) domain.ReplySuggestion {
	var reply string
	switch {
	case rv.Rating >= 4:
		reply = fmt.Sprintf("Thank you for your positive feedback about our %s location! We're thrilled to hear about your experience and look forward to serving you again soon.", rv.Location)
	case rv.Rating <= 2:
		reply = fmt.Sprintf("Thank you for bringing this to our attention regarding your experience at our %s location. We apologize for any inconvenience and would like to make this right. A manager will reach out to you shortly to address your concerns.", rv.Location)
	default:
		reply = fmt.Sprintf("Thank you for your feedback about our %s location. We appreciate you taking the time to share your experience with us and will use this information to improve our services.", rv.Location)
	}
	return domain.ReplySuggestion{
		Reply:     reply,
		Reasoning: fmt.Sprintf("Template-based reply generated based on %d star rating", rv.Rating),
	}
}

// stripFences removes a markdown code fence around a JSON payload; models
// frequently wrap structured output in ```json blocks.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
