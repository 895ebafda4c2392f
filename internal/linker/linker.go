package linker

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/julianshen/doclink/internal/provider"
)

// StepName identifies linking calls in the usage ledger.
const StepName = "semantic_linking"

// Config controls the Reasoning Service calls made by a Linker.
type Config struct {
	Model             string
	Temperature       float64
	MaxTokens         int
	CallTimeout       time.Duration // per-call bound, 0 means no timeout
	RequestsPerSecond float64       // 0 means unlimited
}

// UsageRecorder receives token counts for every Reasoning Service call.
type UsageRecorder interface {
	Record(step, model string, inputTokens, outputTokens int)
}

// ResponseCache stores serialized semantic links keyed by a section's text
// and code, so repeated runs over unchanged content skip the service call.
type ResponseCache interface {
	Get(text, code string) ([]byte, bool)
	Put(text, code string, payload []byte)
}

// Option configures a Linker.
type Option func(*Linker)

// WithUsageRecorder attaches a usage ledger.
func WithUsageRecorder(r UsageRecorder) Option {
	return func(l *Linker) { l.usage = r }
}

// WithCache attaches a response cache.
func WithCache(c ResponseCache) Option {
	return func(l *Linker) { l.cache = c }
}

// Linker drives one Reasoning Service call per link section and merges the
// parsed concepts back into the section.
type Linker struct {
	svc     provider.ReasoningService
	cfg     Config
	usage   UsageRecorder
	cache   ResponseCache
	limiter *rate.Limiter
}

// New creates a Linker for the given Reasoning Service.
func New(svc provider.ReasoningService, cfg Config, opts ...Option) *Linker {
	l := &Linker{svc: svc, cfg: cfg}
	if cfg.RequestsPerSecond > 0 {
		l.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Link processes one section. Text-only and code-only sections are skipped
// without a service call. A service failure (network, rate limit, timeout,
// cancellation) marks the section failed and is never propagated; a
// malformed response payload degrades to an empty concept list.
func (l *Linker) Link(ctx context.Context, section Section) Section {
	if len(section.Text) == 0 || len(section.Code) == 0 {
		section.Status = StatusSkipped
		return section
	}

	text, code := section.joinedText(), section.joinedCode()

	if l.cache != nil {
		if payload, ok := l.cache.Get(text, code); ok {
			var links SemanticLinks
			if err := json.Unmarshal(payload, &links); err == nil {
				section.Status = StatusLinked
				section.Links = &links
				return section
			}
			log.Warn().Msg("discarding undecodable cache entry")
		}
	}

	prompt, err := buildPrompt(section)
	if err != nil {
		log.Error().Err(err).Msg("link prompt construction failed")
		section.Status = StatusFailed
		section.FailReason = err.Error()
		return section
	}

	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			section.Status = StatusFailed
			section.FailReason = err.Error()
			return section
		}
	}

	callCtx := ctx
	if l.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, l.cfg.CallTimeout)
		defer cancel()
	}

	temp := l.cfg.Temperature
	completion, err := l.svc.Complete(callCtx, provider.CompletionRequest{
		Model:       l.cfg.Model,
		System:      systemPrompt,
		Prompt:      prompt,
		MaxTokens:   l.cfg.MaxTokens,
		Temperature: &temp,
	})
	if err != nil {
		log.Error().Err(err).Msg("reasoning service call failed")
		section.Status = StatusFailed
		section.FailReason = err.Error()
		return section
	}

	if l.usage != nil {
		l.usage.Record(StepName, l.cfg.Model, completion.Usage.InputTokens, completion.Usage.OutputTokens)
	}

	links := parseConcepts(completion.Content)
	section.Status = StatusLinked
	section.Links = links

	if l.cache != nil {
		if payload, err := json.Marshal(links); err == nil {
			l.cache.Put(text, code, payload)
		}
	}

	return section
}

// LinkAll processes sections sequentially in input order.
func (l *Linker) LinkAll(ctx context.Context, sections []Section) []Section {
	out := make([]Section, len(sections))
	for i, section := range sections {
		out[i] = l.Link(ctx, section)
	}
	return out
}

// parseConcepts parses a Reasoning Service response into semantic links.
// Malformed JSON or a missing top-level "concepts" key is recoverable:
// the section still counts as linked, with an empty concept list.
func parseConcepts(content string) *SemanticLinks {
	raw := stripFences(content)

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		log.Warn().Err(err).Msg("reasoning service returned malformed JSON")
		return &SemanticLinks{Concepts: []Concept{}}
	}

	conceptsRaw, ok := payload["concepts"]
	if !ok {
		log.Warn().Msg("reasoning service response missing concepts key")
		return &SemanticLinks{Concepts: []Concept{}}
	}

	var concepts []Concept
	if err := json.Unmarshal(conceptsRaw, &concepts); err != nil {
		log.Warn().Err(err).Msg("reasoning service returned malformed concepts")
		return &SemanticLinks{Concepts: []Concept{}}
	}
	if concepts == nil {
		concepts = []Concept{}
	}
	return &SemanticLinks{Concepts: concepts}
}

// stripFences removes a surrounding markdown code fence, which some models
// wrap around JSON despite instructions.
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

func (s Section) joinedText() string {
	return strings.Join(s.Text, "\n")
}

func (s Section) joinedCode() string {
	parts := make([]string, len(s.Code))
	for i, ref := range s.Code {
		parts[i] = ref.Content
	}
	return strings.Join(parts, "\n")
}
