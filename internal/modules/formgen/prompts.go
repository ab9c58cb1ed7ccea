package formgen

import "strings"

const SystemPrompt = "You generate JSON for a conversational form. Return JSON only that matches the schema. Output must be valid JSON."

func UserPrompt(prompt string) string {
	var b strings.Builder
	b.WriteString("Create a concise conversational form from the description below.\n\n")
	b.WriteString("Description: ")
	b.WriteString(prompt)
	b.WriteString("\n\nReturn JSON only.")
	return b.String()
}
