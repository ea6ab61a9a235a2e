package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PXLTCH/startup-ai/internal/interview"
)

// Commands understood by the line-oriented dialogue.
const (
	lineSkip       = ":skip"
	lineRegenerate = "r"
	lineKeepLayout = "k"
)

// RunFallback drives session id as a plain line dialogue for terminals
// without cursor control. It returns nil when the interview completes or
// when in is exhausted.
func RunFallback(ctx context.Context, c Client, id string, in io.Reader, out io.Writer) error {
	res, err := c.Current(ctx, id)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		printPrompt(out, res)
		if res.State == interview.StateDone {
			return nil
		}
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nSession saved. Resume with: orchestra interview --session %s\n", id)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		next, err := handleLine(ctx, c, res, strings.TrimSpace(scanner.Text()))
		if err != nil {
			if interview.IsRetryable(err) {
				fmt.Fprintf(out, "Error: %v (try again)\n", err)
			} else {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
			continue
		}
		res = next
	}
}

// handleLine maps one input line onto the engine call for the current state.
func handleLine(ctx context.Context, c Client, res *interview.Result, line string) (*interview.Result, error) {
	id := res.SessionID
	switch res.State {
	case interview.StateAsking:
		if line == lineSkip {
			return c.Skip(ctx, id)
		}
		return c.Submit(ctx, id, line)

	case interview.StateAwaitingConfirm:
		switch line {
		case lineSkip:
			return c.Skip(ctx, id)
		case "":
			return c.Confirm(ctx, id, nil)
		}
		return c.Confirm(ctx, id, &line)

	case interview.StateAwaitingNameChoice:
		if line == lineRegenerate {
			return c.RegenerateNames(ctx, id)
		}
		return c.SelectName(ctx, id, parseChoice(line))

	case interview.StateAwaitingLogoStyle:
		if n, ok := ordinal(line); ok && n < len(res.Styles) {
			return c.ChooseLogoStyle(ctx, id, string(res.Styles[n]))
		}
		return c.ChooseLogoStyle(ctx, id, line)

	case interview.StateAwaitingLogoSelection:
		switch line {
		case lineRegenerate:
			return c.RegenerateLogos(ctx, id, nil)
		case lineKeepLayout:
			keep := true
			return c.RegenerateLogos(ctx, id, &keep)
		}
		return c.SelectLogo(ctx, id, parseChoice(line))
	}
	return res, nil
}

// parseChoice reads a 1-based number as an ordinal and anything else as text.
func parseChoice(line string) interview.Choice {
	if n, ok := ordinal(line); ok {
		return interview.IndexChoice(n)
	}
	return interview.TextChoice(line)
}

func ordinal(line string) (int, bool) {
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

func printPrompt(out io.Writer, res *interview.Result) {
	fmt.Fprintln(out)
	if res.Message != "" {
		fmt.Fprintln(out, res.Message)
	}
	switch res.State {
	case interview.StateAsking:
		printQuestion(out, res)
		fmt.Fprintf(out, "(type %s to skip)\n", lineSkip)
	case interview.StateAwaitingConfirm:
		printQuestion(out, res)
		fmt.Fprintf(out, "Refined: %s\n", res.Draft)
		fmt.Fprintf(out, "(press Enter to confirm, type a replacement, or %s)\n", lineSkip)
	case interview.StateAwaitingNameChoice:
		fmt.Fprintln(out, "Pick a company name:")
		printOptions(out, res.Names)
		fmt.Fprintf(out, "(number or name, %s for new ideas)\n", lineRegenerate)
	case interview.StateAwaitingLogoStyle:
		fmt.Fprintln(out, "Pick a logo style:")
		styles := make([]string, len(res.Styles))
		for i, s := range res.Styles {
			styles[i] = string(s)
		}
		printOptions(out, styles)
	case interview.StateAwaitingLogoSelection:
		fmt.Fprintf(out, "%s logos, generation %d:\n", res.Style, res.Generation)
		printOptions(out, res.Logos)
		fmt.Fprintf(out, "(number or file, %s to regenerate, %s to keep the layout)\n", lineRegenerate, lineKeepLayout)
	case interview.StateDone:
		fmt.Fprintln(out, "Interview complete.")
	}
}

func printQuestion(out io.Writer, res *interview.Result) {
	if res.Question == nil {
		return
	}
	fmt.Fprintf(out, "[%d/%d] %s\n", res.Index+1, res.Total, res.Question.Text)
	if res.Question.Hint != "" {
		fmt.Fprintf(out, "  %s\n", res.Question.Hint)
	}
}

func printOptions(out io.Writer, options []string) {
	for i, opt := range options {
		fmt.Fprintf(out, "  %d. %s\n", i+1, opt)
	}
}
