package cli

import "testing"

func TestDefaultProjectName(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		want string
	}{
		{"simple", "/home/dev/myapp", "myapp"},
		{"uppercase", "/home/dev/MyApp", "myapp"},
		{"spaces become dashes", "/home/dev/score interactive endpoint", "score-interactive-endpoint"},
		{"underscores kept", "/home/dev/score_endpoint", "score_endpoint"},
		{"dots kept", "/home/dev/app.v2", "app.v2"},
		{"leading underscore trimmed", "/home/dev/_private", "private"},
		{"trailing dot trimmed", "/home/dev/app.", "app"},
		{"nothing usable", "/home/dev/---", "app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := defaultProjectName(tt.dir)
			if got != tt.want {
				t.Errorf("defaultProjectName(%q) = %q, want %q", tt.dir, got, tt.want)
			}
		})
	}
}
