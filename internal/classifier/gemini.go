// Package classifier suggests transaction categories with a language model.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used when none is configured
const DefaultModelName = "gemini-2.5-flash"

// ErrUnavailable is returned while the circuit breaker is open
var ErrUnavailable = errors.New("classifier unavailable")

// Config holds the Gemini classifier settings
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures that opens the breaker
	FailureThreshold uint32
	// CooldownPeriod is how long the breaker stays open
	CooldownPeriod time.Duration
}

// GeminiClassifier asks Gemini to pick one label from a fixed list
type GeminiClassifier struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	logger  zerolog.Logger
}

// New creates a GeminiClassifier
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*GeminiClassifier, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("classifier: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("classifier: create genai client: %w", err)
	}
	return newClassifier(client, cfg, logger), nil
}

func newClassifier(client *genai.Client, cfg Config, logger zerolog.Logger) *GeminiClassifier {
	if cfg.Model == "" {
		cfg.Model = DefaultModelName
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.CooldownPeriod <= 0 {
		cfg.CooldownPeriod = time.Minute
	}

	logger = logger.With().Str("component", "classifier").Logger()
	threshold := cfg.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Timeout:     cfg.CooldownPeriod,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})

	return &GeminiClassifier{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		breaker: breaker,
		logger:  logger,
	}
}

// Classify returns the model's answer, cleaned of quotes and whitespace. The
// caller is responsible for checking it against labels.
func (c *GeminiClassifier) Classify(ctx context.Context, description string, income bool, labels []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		contents := []*genai.Content{
			{
				Role:  "user",
				Parts: []*genai.Part{{Text: BuildPrompt(description, income, labels)}},
			},
		}
		resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
		if err != nil {
			return nil, err
		}
		return resp.Text(), nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", ErrUnavailable
		}
		return "", fmt.Errorf("classifier: generate content: %w", err)
	}

	text, _ := result.(string)
	return CleanLabel(text), nil
}

// BuildPrompt renders the categorization prompt
func BuildPrompt(description string, income bool, labels []string) string {
	kind := "Saída (Despesa)"
	if income {
		kind = "Entrada (Receita)"
	}
	var b strings.Builder
	b.WriteString("Você é um assistente financeiro. Categorize a transação abaixo escolhendo ESTRITAMENTE uma das categorias da lista fornecida.\n\n")
	fmt.Fprintf(&b, "Transação: %q\n", description)
	fmt.Fprintf(&b, "Tipo: %s\n\n", kind)
	fmt.Fprintf(&b, "Lista de Categorias Permitidas: %s\n\n", strings.Join(labels, ", "))
	b.WriteString(`Retorne APENAS o nome da categoria exata da lista. Se não tiver certeza, retorne "Outros".`)
	return b.String()
}

// CleanLabel strips quotes and surrounding whitespace from a model answer
func CleanLabel(text string) string {
	text = strings.NewReplacer(`"`, "", "'", "").Replace(text)
	return strings.TrimSpace(text)
}
