package llm

import "testing"

func TestDecodeJSON(t *testing.T) {
	type verdict struct {
		Verdict    string  `json:"verdict"`
		Confidence float64 `json:"confidence"`
	}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "plain JSON",
			input: `{"verdict": "false", "confidence": 0.9}`,
			want:  "false",
		},
		{
			name:  "markdown json fence",
			input: "```json\n{\"verdict\": \"mixed\", \"confidence\": 0.5}\n```",
			want:  "mixed",
		},
		{
			name:  "bare fence with language tag",
			input: "```json\n{\"verdict\": \"true\", \"confidence\": 0.8}\n```\ntrailing note",
			want:  "true",
		},
		{
			name:  "JSON embedded in prose",
			input: `Here is my analysis: {"verdict": "mostly_false", "confidence": 0.7} as requested.`,
			want:  "mostly_false",
		},
		{
			name:    "empty response",
			input:   "",
			wantErr: true,
		},
		{
			name:    "no JSON at all",
			input:   "I cannot determine a verdict.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v verdict
			err := DecodeJSON(tt.input, &v)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeJSON failed: %v", err)
			}
			if v.Verdict != tt.want {
				t.Errorf("Expected verdict %q, got %q", tt.want, v.Verdict)
			}
		})
	}
}
