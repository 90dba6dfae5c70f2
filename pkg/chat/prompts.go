package chat

import (
	"fmt"
	"strings"

	"github.com/bizmate/bizmate/pkg/business"
)

const defaultSystemPrompt = `You are a helpful assistant for a small business owner.
Answer questions clearly and concisely. When business data is provided below, ground your
answers in it instead of guessing.`

const copilotSystemPrompt = `You are a proactive business copilot for a small business owner.
Beyond answering the question, point out risks, follow-ups and opportunities the owner may
have missed. Keep suggestions concrete and tied to the business data provided below.`

// FallbackReply is shown as the assistant's answer when the model backend
// fails without a usable error message.
const FallbackReply = "Sorry, something went wrong while processing your message. Please try again."

// emailTriggerPhrases gate the send_email tool. The model only sees the tool
// when the user explicitly asks to write and send, so an offhand mention of
// email cannot trigger an outbound message.
var emailTriggerPhrases = []string{
	"write and send",
	"write & send",
	"compose and send",
}

// SystemPrompt builds the system message for a completion: the mode's base
// prompt plus a business context block when one is available.
func SystemPrompt(mode string, bizCtx *business.Context) string {
	prompt := defaultSystemPrompt
	if mode == ModeCopilot {
		prompt = copilotSystemPrompt
	}
	if bizCtx == nil {
		return prompt
	}

	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nBusiness context:\n")
	fmt.Fprintf(&b, "Name: %s\n", bizCtx.BusinessName)
	fmt.Fprintf(&b, "Area: %s\n", bizCtx.Area)
	fmt.Fprintf(&b, "Owner: %s\n", bizCtx.OwnerName)
	if bizCtx.Profit != "" {
		fmt.Fprintf(&b, "Profit: %s\n", bizCtx.Profit)
	}
	if len(bizCtx.Employees) > 0 {
		b.WriteString("Employees:\n")
		for _, e := range bizCtx.Employees {
			fmt.Fprintf(&b, "- %s, %s, %s\n", e.Name, e.Position, e.Email)
		}
	}
	return b.String()
}

// WantsEmailTool reports whether the user message explicitly asks the
// assistant to write and send an email.
func WantsEmailTool(message string) bool {
	lowered := strings.ToLower(message)
	for _, phrase := range emailTriggerPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
