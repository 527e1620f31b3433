package shared

import "testing"

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		name       string
		durationMS int
		want       string
	}{
		{
			name:       "typical track",
			durationMS: 214000,
			want:       "3:34",
		},
		{
			name:       "pads seconds",
			durationMS: 61000,
			want:       "1:01",
		},
		{
			name:       "sub-second truncates",
			durationMS: 900,
			want:       "0:00",
		},
		{
			name:       "zero is unknown",
			durationMS: 0,
			want:       "-",
		},
		{
			name:       "negative is unknown",
			durationMS: -5,
			want:       "-",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDuration(tt.durationMS)
			if got != tt.want {
				t.Errorf("FormatDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisibilityString(t *testing.T) {
	if got := VisibilityString(true); got != "Public" {
		t.Errorf("VisibilityString(true) = %v, want Public", got)
	}
	if got := VisibilityString(false); got != "Private" {
		t.Errorf("VisibilityString(false) = %v, want Private", got)
	}
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == "" || b == "" {
		t.Fatal("GenerateID returned empty string")
	}
	if a == b {
		t.Error("GenerateID returned duplicate ids")
	}
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState failed: %v", err)
	}
	b, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState failed: %v", err)
	}

	if len(a) != 32 {
		t.Errorf("expected 32 hex characters, got %d", len(a))
	}
	if a == b {
		t.Error("GenerateState returned duplicate values")
	}
}
