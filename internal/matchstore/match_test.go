package matchstore

import "testing"

func TestHasSourceVideo(t *testing.T) {
	tests := []struct {
		name  string
		match *Match
		want  bool
	}{
		{name: "nil record", match: nil, want: false},
		{name: "empty locator", match: &Match{}, want: false},
		{name: "whitespace locator", match: &Match{MatchVideo: "   "}, want: false},
		{name: "platform url", match: &Match{MatchVideo: "https://video.example/m1"}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.match.HasSourceVideo(); got != tt.want {
				t.Fatalf("HasSourceVideo() = %t, want %t", got, tt.want)
			}
		})
	}
}
