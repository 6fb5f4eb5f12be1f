package model

import (
	"testing"
	"time"
)

func TestEffectiveAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name  string
		grant UserPermission
		want  bool
	}{
		{"active without expiry", UserPermission{IsActive: true}, true},
		{"active expiring later", UserPermission{IsActive: true, ExpiresAt: &future}, true},
		{"active already expired", UserPermission{IsActive: true, ExpiresAt: &past}, false},
		{"expiring exactly now", UserPermission{IsActive: true, ExpiresAt: &now}, false},
		{"revoked without expiry", UserPermission{IsActive: false}, false},
		{"revoked expiring later", UserPermission{IsActive: false, ExpiresAt: &future}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.grant.EffectiveAt(now); got != tt.want {
				t.Fatalf("EffectiveAt = %v, want %v", got, tt.want)
			}
		})
	}
}
