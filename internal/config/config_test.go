package config

import "testing"

func TestResolvePushKeyOrder(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		hdr  string
		want string
	}{
		{"push key wins", Config{PushAPIKey: "a", APIKey: "b", BackendAPIKey: "c"}, "d", "a"},
		{"api key second", Config{APIKey: "b", BackendAPIKey: "c"}, "d", "b"},
		{"backend key third", Config{BackendAPIKey: "c"}, "d", "c"},
		{"header fallback", Config{}, "d", "d"},
		{"nothing configured", Config{}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ResolvePushKey(tt.hdr); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
