package version

import (
	"testing"
)

func TestVersion(t *testing.T) {
	tests := []struct {
		name   string
		commit string
		want   string
	}{
		{name: "LocalBuild", commit: "", want: Version},
		{name: "WithCommit", commit: "abc1234", want: Version + " (abc1234)"},
	}

	if Version == "" {
		t.Fatal("Version must be set")
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := Commit
			Commit = tt.commit
			defer func() { Commit = prev }()

			if got := String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
