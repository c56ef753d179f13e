package triage

import "fmt"

// PriorityPrompt asks the model for a single-word classification.
func PriorityPrompt(issue string) string {
	return fmt.Sprintf("Classify this support issue into one of: low, medium, high, urgent.\nIssue: %s", issue)
}

// ReplyPrompt asks the model to draft an agent reply.
func ReplyPrompt(issue string) string {
	return fmt.Sprintf("Write a short helpful support agent reply for this issue:\n\"%s\"", issue)
}
