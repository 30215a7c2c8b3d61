package whitelist

import (
	"testing"

	"go.uber.org/zap"
)

func TestChecker(t *testing.T) {
	t.Parallel()

	c := NewChecker([]string{" https://App.example.com/ ", "*.loans.test", ""}, zap.NewNop())

	tests := []struct {
		origin string
		want   bool
	}{
		{origin: "https://app.example.com", want: true},
		{origin: "HTTPS://APP.EXAMPLE.COM", want: true},
		{origin: "http://app.example.com", want: false},
		{origin: "https://portal.loans.test", want: true},
		{origin: "https://loans.test", want: false},
		{origin: "https://evil-loans.test", want: false},
		{origin: "", want: false},
		{origin: "not a url", want: false},
	}
	for _, tt := range tests {
		if got := c.IsWhitelisted(tt.origin); got != tt.want {
			t.Errorf("IsWhitelisted(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
	if c.AllowAll() {
		t.Fatalf("unexpected allow-all")
	}
}

func TestCheckerAllowAll(t *testing.T) {
	t.Parallel()

	c := NewChecker([]string{"*"}, nil)
	if !c.AllowAll() || !c.IsWhitelisted("https://anything.example") {
		t.Fatalf("expected wildcard to allow every origin")
	}
	if NewChecker(nil, nil).IsWhitelisted("https://a.example") {
		t.Fatalf("empty allowlist must reject")
	}
}
