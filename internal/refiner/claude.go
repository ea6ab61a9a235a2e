package refiner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
)

// ClaudeCLI completes prompts by spawning the claude CLI in print mode.
type ClaudeCLI struct {
	Path  string // binary name or path; defaults to "claude"
	Model string
}

// claudeOutput is the JSON envelope returned with --output-format json.
type claudeOutput struct {
	Type       string  `json:"type"`
	Subtype    string  `json:"subtype"`
	Result     string  `json:"result"`
	CostUSD    float64 `json:"cost_usd"`
	DurationMS int64   `json:"duration_ms"`
	SessionID  string  `json:"session_id"`
	IsError    bool    `json:"is_error"`
	NumTurns   int     `json:"num_turns"`
}

func (c *ClaudeCLI) binary() string {
	if c.Path == "" {
		return "claude"
	}
	return c.Path
}

// Check verifies the binary is on PATH.
func (c *ClaudeCLI) Check() error {
	if _, err := exec.LookPath(c.binary()); err != nil {
		return fmt.Errorf("%w: %s", ErrCLINotFound, c.binary())
	}
	return nil
}

// Complete runs one claude invocation. The deadline is taken from ctx.
func (c *ClaudeCLI) Complete(ctx context.Context, req Request) (string, error) {
	cmd := exec.CommandContext(ctx, c.binary(), buildClaudeArgs(c.Model, req)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", &Error{Op: "claude", Err: ErrCLINotFound}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", &Error{Op: "claude", Err: ctxErr, Retryable: errors.Is(ctxErr, context.DeadlineExceeded)}
		}
		return "", &Error{Op: "claude", Err: fmt.Errorf("claude exited with error: %w", err), Details: stderr.String(), Retryable: true}
	}

	out, err := parseClaudeOutput(stdout.Bytes())
	if err != nil {
		return "", &Error{Op: "claude", Err: err}
	}
	if out.IsError {
		return "", &Error{Op: "claude", Err: errors.New("claude reported an error"), Details: out.Result, Retryable: true}
	}
	return out.Result, nil
}

// buildClaudeArgs constructs the CLI argument slice for one completion.
func buildClaudeArgs(model string, req Request) []string {
	args := []string{
		"-p", req.Prompt,
		"--output-format", "json",
	}
	if req.System != "" {
		args = append(args, "--append-system-prompt", req.System)
	}
	if model != "" {
		args = append(args, "--model", model)
	}
	return args
}

// parseClaudeOutput decodes the result envelope.
func parseClaudeOutput(raw []byte) (*claudeOutput, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("empty claude output")
	}

	var out claudeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parsing claude output: %w", err)
	}
	if out.Type != "result" {
		return nil, fmt.Errorf("unexpected claude output type: %q (expected \"result\")", out.Type)
	}
	return &out, nil
}
