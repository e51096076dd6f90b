package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role, minimum string
		want          bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleUser, true},
		{RoleUser, RoleAdmin, false},
		{RoleUser, RoleUser, true},
		{"", RoleUser, false},
		{"unknown", RoleUser, false},
	}

	for _, tt := range tests {
		if got := RoleAtLeast(tt.role, tt.minimum); got != tt.want {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.want)
		}
	}
}

func TestItemActive(t *testing.T) {
	if !(Item{}).Active() {
		t.Error("expected zero item to be active")
	}
	if (Item{Returned: true}).Active() {
		t.Error("expected returned item to be inactive")
	}
	if (Item{Deleted: true}).Active() {
		t.Error("expected deleted item to be inactive")
	}
}
