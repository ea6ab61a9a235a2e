// prompt.go builds the prompts sent to the completion provider.
package refiner

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MentorSystemPrompt frames answer refinement.
const MentorSystemPrompt = `You are "Startup Orchestra", a professional startup mentor. Stay strictly on the interview questions. Style: concise, investor-focused. Rewrite the founder's answer into a sharper investor-ready statement. Reply with the rewritten statement only.`

// PackSystemPrompt frames name and founder pack generation.
const PackSystemPrompt = `You are a professional startup mentor. Create concise, investor-ready content only from the provided profile. Do not invent numbers. If numbers are missing, state clear assumptions as placeholders.`

// BuildRefinePrompt asks for a rewrite of one answer.
func BuildRefinePrompt(question, answer string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Current question: %q\n", question))
	sb.WriteString(fmt.Sprintf("User answer: %q\n", answer))
	sb.WriteString("Rewrite concisely for investors.")
	return sb.String()
}

// BuildNamesPrompt asks for a JSON array of five brandable names.
// diversityKey is a random token that keeps repeated calls from converging.
func BuildNamesPrompt(diversityKey, mission string, avoid []string) string {
	if avoid == nil {
		avoid = []string{}
	}
	avoidJSON, _ := json.Marshal(avoid)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("DiversityKey=%s. Return ONLY a JSON array of 5 brandable startup names as plain strings.\n", diversityKey))
	sb.WriteString("HARD RULES: (1) each name must be <= 12 characters total, (2) no spaces or hyphens, (3) letters/numbers only,\n")
	sb.WriteString(fmt.Sprintf("(4) avoid these names and similar stems: %s,\n", avoidJSON))
	sb.WriteString(fmt.Sprintf("(5) prefer relevance to this mission: %s. No prose, no numbering.", mission))
	return sb.String()
}

// BuildOutlinePrompt asks for a 10-slide pitch outline for profileJSON.
func BuildOutlinePrompt(profileJSON string) string {
	return "Create a 10-slide pitch outline JSON: [{\"title\": string, \"bullets\": [string]}]. Keep bullets short. Profile: " + profileJSON
}

// CleanJSON extracts a JSON value from model output that may wrap it in
// prose or markdown code fences.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)

	if idx := strings.Index(s, "```json"); idx != -1 {
		s = s[idx+7:]
		if endIdx := strings.Index(s, "```"); endIdx != -1 {
			s = s[:endIdx]
		}
		return strings.TrimSpace(s)
	}
	if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
		// Skip an optional language identifier on the fence line.
		if nlIdx := strings.Index(s, "\n"); nlIdx != -1 && nlIdx < 20 {
			s = s[nlIdx+1:]
		}
		if endIdx := strings.Index(s, "```"); endIdx != -1 {
			s = s[:endIdx]
		}
		return strings.TrimSpace(s)
	}

	// No fence: take the outermost array or object, whichever opens first.
	opening, closing := "{", "}"
	arr := strings.Index(s, "[")
	obj := strings.Index(s, "{")
	if arr != -1 && (obj == -1 || arr < obj) {
		opening, closing = "[", "]"
	}
	start := strings.Index(s, opening)
	end := strings.LastIndex(s, closing)
	if start != -1 && end > start {
		return s[start : end+1]
	}

	return s
}
