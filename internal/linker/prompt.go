package linker

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// systemPrompt frames every linking call.
const systemPrompt = "You are a semantic linking agent for technical documentation. " +
	"You associate explanatory text with the code it describes and respond only with JSON."

var linkPromptTmpl = template.Must(template.New("link").Parse(
	`Analyze the following documentation section and identify the concepts that connect the explanatory text to the code.

Text:
{{.Text}}

Code:
{{.Code}}

Respond with a single JSON object of the form:
{
  "concepts": [
    {
      "name": "<short concept label>",
      "text_references": ["<verbatim excerpt from the text>"],
      "code_references": ["<verbatim excerpt from the code>"],
      "explanation": "<how the text and code relate>",
      "metadata": {"confidence": <0.0-1.0>, "type": "<implementation|example|reference>"}
    }
  ]
}

Return {"concepts": []} if no meaningful association exists. Do not include any prose outside the JSON object.`))

// buildPrompt renders the user prompt for one link section: the joined
// prose followed by each code block fenced with its language.
func buildPrompt(section Section) (string, error) {
	var code strings.Builder
	for _, ref := range section.Code {
		fmt.Fprintf(&code, "```%s\n%s\n```\n", ref.Language, ref.Content)
	}

	var buf bytes.Buffer
	err := linkPromptTmpl.Execute(&buf, struct {
		Text string
		Code string
	}{
		Text: strings.Join(section.Text, "\n\n"),
		Code: strings.TrimRight(code.String(), "\n"),
	})
	if err != nil {
		return "", fmt.Errorf("rendering link prompt: %w", err)
	}
	return buf.String(), nil
}
