package postprocess

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "plain translation untouched",
			input:    "डॉ. अनिल गुप्ता ने एम्स का दौरा किया।",
			expected: "डॉ. अनिल गुप्ता ने एम्स का दौरा किया।",
		},
		{
			name:     "thinking block removed",
			input:    "<think>translate the name</think>Привіт",
			expected: "Привіт",
		},
		{
			name:     "truncated reasoning removed",
			input:    "Привіт<reasoning>the model was cut off",
			expected: "Привіт",
		},
		{
			name:     "translation echo removed",
			input:    "Here is the translation: Привіт",
			expected: "Привіт",
		},
		{
			name:     "polite echo removed",
			input:    "Sure, here's the translated text: Привіт",
			expected: "Привіт",
		},
		{
			name:     "entity echo removed",
			input:    `Here are the named entities: {"entities": ["AIIMS"]}`,
			expected: `{"entities": ["AIIMS"]}`,
		},
		{
			name:     "guillemets stripped",
			input:    "«Привіт»",
			expected: "Привіт",
		},
		{
			name:     "mismatched quotes kept",
			input:    "\"Привіт'",
			expected: "\"Привіт'",
		},
		{
			name:     "echo not at start kept",
			input:    "He said: here is the translation: no",
			expected: "He said: here is the translation: no",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare object",
			input:    `{"entities": ["AIIMS"]}`,
			expected: `{"entities": ["AIIMS"]}`,
		},
		{
			name:     "code fence",
			input:    "```json\n{\"entities\": [\"Anil Gupta\"]}\n```",
			expected: `{"entities": ["Anil Gupta"]}`,
		},
		{
			name:     "prose around array",
			input:    `Entities: ["AIIMS", "January 15"] done`,
			expected: `["AIIMS", "January 15"]`,
		},
		{
			name:     "object containing array",
			input:    `x {"a": [1]} y`,
			expected: `{"a": [1]}`,
		},
		{
			name:     "no json",
			input:    "  nothing here ",
			expected: "nothing here",
		},
		{
			name:     "unclosed",
			input:    `{"entities": [`,
			expected: `{"entities": [`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.input); got != tt.expected {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
