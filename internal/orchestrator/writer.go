// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package orchestrator

import (
	"encoding/json"

	"github.com/oriongate/mcpbridge/internal/llm"
)

const writerSystemPrompt = `You are the final-answer writer. Hide tool names, paths, and debug details. ` +
	`Be concise and user-facing. Respond in Korean.`

const evaluatorSystemPrompt = `You are a quality judge for a drafted answer. ` +
	`Respond with a single JSON object: {"pass": bool, "score": 0-100, "feedback": string}.`

// Polish runs the Writer/Evaluator pipeline: draft once,
// evaluate, and redraft with feedback only if the first draft fails.
// The second draft (or the first, if it already passed) is returned
// along with its evaluation regardless of verdict.
func Polish(c *Context, prompt, draft string) (string, *QualityCheck) {
	answer := draftAnswer(c, prompt, draft, "")
	check := evaluateAnswer(c, prompt, answer)
	if check.Pass {
		return answer, check
	}

	answer = draftAnswer(c, prompt, answer, check.Feedback)
	check = evaluateAnswer(c, prompt, answer)
	return answer, check
}

func draftAnswer(c *Context, prompt, draft, feedback string) string {
	input := "User prompt: " + prompt + "\nCurrent draft: " + draft
	if feedback != "" {
		input += "\nFeedback: " + feedback
	}

	out, err := c.Runtime.LLM.Complete(c, []llm.Message{
		{Role: llm.RoleSystem, Content: writerSystemPrompt},
		{Role: llm.RoleUser, Content: input},
	}, llm.FormatText)
	if err != nil || out == "" {
		return draft
	}
	return out
}

func evaluateAnswer(c *Context, prompt, answer string) *QualityCheck {
	fallback := &QualityCheck{Pass: true, Score: 80, Feedback: ""}

	out, err := c.Runtime.LLM.Complete(c, []llm.Message{
		{Role: llm.RoleSystem, Content: evaluatorSystemPrompt},
		{Role: llm.RoleUser, Content: "User prompt: " + prompt + "\nCandidate answer: " + answer},
	}, llm.FormatJSON)
	if err != nil {
		return fallback
	}

	var check QualityCheck
	if jsonErr := json.Unmarshal([]byte(extractJSON(out)), &check); jsonErr != nil {
		return fallback
	}
	if check.Score < 0 || check.Score > 100 {
		return fallback
	}
	return &check
}
