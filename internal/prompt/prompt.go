// Package prompt builds the system frames sent to the language model. Both
// the refinement conversation and the PRD generator draw from here so the
// persona and formatting rules live in one place.
package prompt

import (
	"fmt"
	"strings"

	"idekassen.app/intake/internal/model"
)

// Coach describes the refinement-assistant frame for one conversation turn.
type Coach struct {
	Round     int // submitter turns completed so far
	MaxRounds int
}

// System renders the round-dependent system instruction for the refinement
// assistant. Rounds 1-2 probe the problem and its beneficiaries, rounds 3-4
// probe implementation and resources, and the final round summarizes and
// prompts submission.
func (c Coach) System() string {
	var b strings.Builder

	b.WriteString("You are a friendly assistant helping employees improve their business suggestions. ")
	b.WriteString("Keep the conversation short and focused.\n\n")
	fmt.Fprintf(&b, "Current conversation round: %d/%d\n\n", c.Round, c.MaxRounds)

	b.WriteString("Guidelines by round:\n\n")
	b.WriteString("Rounds 1-2: ask one or two short, focused questions to understand the core idea.\n")
	b.WriteString("- What is the main problem being solved?\n")
	b.WriteString("- Who benefits from this?\n\n")
	b.WriteString("Rounds 3-4: help refine and elaborate the idea.\n")
	b.WriteString("- How could the idea be implemented?\n")
	b.WriteString("- What resources are needed?\n\n")
	fmt.Fprintf(&b, "Round %d: summarize and close the conversation.\n", c.MaxRounds)
	b.WriteString("- Give a short summary of the improved idea.\n")
	b.WriteString("- Suggest that the idea is ready for submission.\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("- Keep answers short (at most 2-3 sentences).\n")
	b.WriteString("- Ask only ONE question at a time.\n")
	b.WriteString("- Avoid technical jargon.\n")
	b.WriteString("- Be encouraging and constructive.\n")
	fmt.Fprintf(&b, "- After round %d: always summarize and suggest submission.\n", c.MaxRounds)

	return b.String()
}

// Greeting renders the instruction for the opening assistant message of a
// fresh conversation.
func Greeting(title, description string) string {
	return fmt.Sprintf(
		"You are a friendly assistant helping an employee develop a business suggestion. "+
			"The suggestion is titled %q and described as: %s\n\n"+
			"Write a short, warm opening message (2-3 sentences) that references the idea, "+
			"reassures the employee that almost anything is possible, and asks which problem "+
			"they want to solve. No jargon.",
		title, description)
}

// GreetingFallback is used verbatim when the model cannot be reached for the
// opening message.
func GreetingFallback(title string) string {
	return fmt.Sprintf(
		"Hi! I can see you want to work on: %q. Let's develop the idea together, "+
			"no jargon needed. Almost anything is possible. Which problem would you like to solve?",
		title)
}

// PRDSystem is the fixed frame for PRD generation.
const PRDSystem = "You are an expert product manager writing a concise product requirements document (PRD)."

// PRDRequest renders the user instruction embedding title, description and the
// flattened conversation transcript.
func PRDRequest(title, description string, conversation []model.Message) string {
	return fmt.Sprintf(
		"Create a PRD for the following idea.\nTitle: %s\nDescription: %s\nConversation summary:\n%s",
		title, description, Transcript(conversation))
}

// Transcript flattens a conversation log into "role: content" lines.
func Transcript(conversation []model.Message) string {
	lines := make([]string, len(conversation))
	for i, m := range conversation {
		lines[i] = m.Role + ": " + m.Content
	}
	return strings.Join(lines, "\n")
}

// AnnotateAttachments folds attachment metadata into a message text so the
// model knows files were shared without ever seeing the bytes.
func AnnotateAttachments(text string, attachments []model.Attachment) string {
	if len(attachments) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\n[Attached files: ")
	for i, a := range attachments {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s (%s)", a.Name, a.Type)
	}
	b.WriteString("]")
	return b.String()
}
