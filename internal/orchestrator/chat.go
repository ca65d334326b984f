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

import "github.com/oriongate/mcpbridge/internal/llm"

const chatOnlySystemPrompt = `You are a helpful assistant answering the user directly, without any tools. ` +
	`Respond in Korean.`

// RunChatAgent implements the Chat Agent, used when the
// Plan Agent routed the request to chat_only.
func RunChatAgent(c *Context, prompt string) Response {
	c.emitProgress("chat", nil)

	out, err := c.Runtime.LLM.Complete(c, []llm.Message{
		{Role: llm.RoleSystem, Content: chatOnlySystemPrompt},
		{Role: llm.RoleUser, Content: prompt},
	}, llm.FormatText)
	if err != nil {
		out = "죄송합니다, 답변을 생성하지 못했습니다."
	}

	return Response{
		Action: "chat-only", Answer: out, Route: RouteChatOnly, MCPStatus: 200,
		AgentTrace: c.Trace(),
	}
}
