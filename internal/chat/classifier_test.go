package chat

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		message string
		want    Intent
	}{
		{"hi", IntentGreeting},
		{"Hello!", IntentGreeting},
		{"Good morning", IntentGreeting},
		{"hey?", IntentGreeting},
		{"help", IntentMetaCommand},
		{"What can you do?", IntentMetaCommand},
		{"who are you", IntentMetaCommand},
		{"what is the RICE method", IntentInformationRequest},
		{"my knee hurts when I run", IntentInformationRequest},
		{"hello my knee hurts", IntentInformationRequest},
		{"", IntentInformationRequest},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := Classify(tt.message); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}
