package domain

import "testing"

func TestTierForKey(t *testing.T) {
	tests := []struct {
		key  string
		want Tier
	}{
		{"pk_live_abc123", TierEnterprise},
		{"pk_test_abc123", TierDevelopment},
		{"sk_something", TierFree},
		{"", TierFree},
	}
	for _, tt := range tests {
		if got := TierForKey(tt.key); got != tt.want {
			t.Errorf("TierForKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
