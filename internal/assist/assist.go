// Package assist asks a text-generation model to rewrite the generated
// scene and extracts the code it proposes.
package assist

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
)

var ErrNotConfigured = errors.New("assistant not configured")

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var fencePattern = regexp.MustCompile("(?s)```(?:python|py)?[ \\t]*\\r?\\n?(.*?)```")

type Bridge struct {
	gen Generator
}

// NewBridge wraps gen. A nil generator yields a bridge that always
// reports ErrNotConfigured.
func NewBridge(gen Generator) *Bridge {
	return &Bridge{gen: gen}
}

func (b *Bridge) Configured() bool {
	return b != nil && b.gen != nil
}

// Suggestion is the outcome of one request. Code is empty when the reply
// held no fenced block.
type Suggestion struct {
	Code  string `json:"code,omitempty"`
	Found bool   `json:"found"`
	Reply string `json:"reply"`
}

// Suggest sends the current code, node ids and instruction to the model.
func (b *Bridge) Suggest(ctx context.Context, code string, nodeIDs []string, instruction string) (Suggestion, error) {
	if !b.Configured() {
		return Suggestion{}, ErrNotConfigured
	}

	log.Printf("Querying assistant...")
	reply, err := b.gen.Generate(ctx, BuildPrompt(code, nodeIDs, instruction))
	if err != nil {
		log.Printf("Assistant error: %v", err)
		return Suggestion{}, fmt.Errorf("assistant request: %w", err)
	}

	extracted, ok := ExtractCode(reply)
	if !ok {
		log.Printf("Assistant returned no code.")
		return Suggestion{Reply: reply}, nil
	}
	return Suggestion{Code: extracted, Found: true, Reply: reply}, nil
}

func BuildPrompt(code string, nodeIDs []string, instruction string) string {
	ids := make([]string, len(nodeIDs))
	for i, id := range nodeIDs {
		ids[i] = "'" + id + "'"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Context: Nodes=[%s]\nCode:\n%s\n\n", strings.Join(ids, ", "), code)
	fmt.Fprintf(&sb, "Task: %s\n", instruction)
	sb.WriteString("Respond ONLY with Python code between ```python ... ``` blocks.")
	return sb.String()
}

// ExtractCode returns the trimmed body of the first fenced code block.
func ExtractCode(reply string) (string, bool) {
	m := fencePattern.FindStringSubmatch(reply)
	if m == nil {
		return "", false
	}
	code := strings.TrimSpace(m[1])
	if code == "" {
		return "", false
	}
	return code, true
}
