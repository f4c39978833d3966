package engine

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"github.com/tatianab/lone-garrison/internal/models"
	"google.golang.org/api/option"
)

//go:embed prompts/embellish.txt
var embellishPrompt string

//go:embed prompts/freeform.txt
var freeformPrompt string

//go:embed prompts/advisor.txt
var advisorPrompt string

// narratorTimeout bounds every generation call. The turn must complete
// even if the network call never returns; callers fall back to their
// deterministic template text on any error.
const narratorTimeout = 90 * time.Second

// Narrator wraps the optional generative-text collaborator. A nil
// *Narrator is valid and means embellishment is disabled.
type Narrator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	log    zerolog.Logger
}

// NewNarrator dials the generation service. An empty API key returns
// (nil, nil): the engine runs fine without it.
func NewNarrator(ctx context.Context, apiKey string, log zerolog.Logger) (*Narrator, error) {
	if apiKey == "" {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create generation client: %w", err)
	}
	return &Narrator{
		client: client,
		model:  client.GenerativeModel("gemini-2.5-flash"),
		log:    log,
	}, nil
}

func (n *Narrator) Close() {
	if n != nil && n.client != nil {
		n.client.Close()
	}
}

// Embellish rewrites the deterministic turn text into richer prose. The
// computed facts are authoritative; the call only restyles them.
func (n *Narrator) Embellish(ctx context.Context, facts []string, s *models.GameState, command, history, base string) (string, error) {
	data := struct {
		Day     int
		Time    string
		Morale  int
		Command string
		Facts   string
		History string
		Base    string
	}{s.Day, s.CurrentTime, s.Morale, command, strings.Join(facts, ", "), history, base}
	return n.generate(ctx, "embellish", embellishPrompt, data)
}

// Freeform answers an unclassified command in character.
func (n *Narrator) Freeform(ctx context.Context, command string, s *models.GameState) (string, error) {
	data := struct {
		Day     int
		Time    string
		Command string
	}{s.Day, s.CurrentTime, command}
	return n.generate(ctx, "freeform", freeformPrompt, data)
}

// ChatMessage is one entry of the advisor conversation.
type ChatMessage struct {
	Role string // "user" or "advisor"
	Text string
}

// Advise runs the out-of-band advisor chat. It never touches game state.
func (n *Narrator) Advise(ctx context.Context, history []ChatMessage, message string) (string, error) {
	if n == nil {
		return "", fmt.Errorf("advisor offline: no generation service configured")
	}
	ctx, cancel := context.WithTimeout(ctx, narratorTimeout)
	defer cancel()

	session := n.model.StartChat()
	for _, msg := range history {
		role := "user"
		if msg.Role == "advisor" {
			role = "model"
		}
		session.History = append(session.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Text)},
		})
	}
	resp, err := session.SendMessage(ctx, genai.Text(advisorPrompt+"\n\n"+message))
	if err != nil {
		return "", err
	}
	return textOf(resp)
}

func (n *Narrator) generate(ctx context.Context, name, promptText string, data any) (string, error) {
	if n == nil {
		return "", fmt.Errorf("narrator disabled")
	}
	tmpl, err := template.New(name).Parse(promptText)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, narratorTimeout)
	defer cancel()

	resp, err := n.model.GenerateContent(ctx, genai.Text(buf.String()))
	if err != nil {
		n.log.Warn().Err(err).Str("prompt", name).Msg("generation call failed")
		return "", err
	}
	return textOf(resp)
}

func textOf(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part type")
	}
	out := strings.TrimSpace(string(text))
	if out == "" {
		return "", fmt.Errorf("empty response")
	}
	return out, nil
}
