package translate

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/minios-linux/llmtranslator/settings"
)

// ---------------------------------------------------------------------------
// System prompts
// ---------------------------------------------------------------------------

// DefaultSystemPrompt is used when the user configuration has no prompt.
const DefaultSystemPrompt = `You are a professional translator. Your task is to translate the provided content accurately while preserving the original meaning and tone.`

// SystemPromptAppendix is always appended to the system prompt.
const SystemPromptAppendix = `The user asks you to translate the text to a specific language, the language is provided via short code like "en", "fr", "de", etc.`

// SystemPromptFix is the system prompt of the JSON correction request.
const SystemPromptFix = `You are a JSON correction assistant. Only return valid, corrected JSON.`

// UserPromptFixPrefix precedes the invalid JSON in the correction request.
const UserPromptFixPrefix = `Fix this invalid JSON and return ONLY the corrected JSON. No explanations allowed. The JSON is:`

const userPromptTemplate = `You are translating content from a CMS. Please translate the following JSON data to {{targetLang}}.

IMPORTANT RULES:
1. Preserve all JSON structure and keys exactly as provided
2. Only translate string values
3. Maintain any markdown formatting within the text
4. Keep HTML tags intact if present
5. Preserve any special characters or placeholders
6. Return ONLY the translated JSON object
7. Ensure the JSON is valid and well-formed, all values must be strings
8. Do not add any explanations or comments
9. Ensure professional and culturally appropriate translations

SOURCE JSON:
`

// BuildSystemPrompt returns the user's system prompt, or the default one,
// followed by SystemPromptAppendix.
func BuildSystemPrompt(uc settings.UserConfig) string {
	prompt := strings.TrimSpace(uc.SystemPrompt)
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	return prompt + " " + SystemPromptAppendix
}

// BuildPrompt embeds the payload, indented by two spaces, in the
// translation instructions for targetLang.
func BuildPrompt(payload map[string]any, targetLang string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // markup must reach the model verbatim
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return "", err
	}
	source := strings.TrimSuffix(buf.String(), "\n")
	return strings.ReplaceAll(userPromptTemplate, "{{targetLang}}", targetLang) + source, nil
}

// BuildCorrectionPrompt returns the user message asking the model to fix
// invalid JSON.
func BuildCorrectionPrompt(invalid string) string {
	return UserPromptFixPrefix + " " + invalid
}
