package main

import (
	"testing"

	"desktidy/internal/domain"
)

func TestPassChanged(t *testing.T) {
	skipped := domain.Action{Kind: domain.ActionSkipped, Source: "/desk/c.xyz"}
	tests := []struct {
		name    string
		summary domain.OrganizationSummary
		want    bool
	}{
		{"empty", domain.OrganizationSummary{}, false},
		{"only skips", domain.OrganizationSummary{Actions: []domain.Action{skipped, skipped}}, false},
		{"moved", domain.OrganizationSummary{Actions: []domain.Action{skipped, {Kind: domain.ActionMoved}}}, true},
		{"failed", domain.OrganizationSummary{Actions: []domain.Action{{Kind: domain.ActionFailed}}}, true},
		{"folder created", domain.OrganizationSummary{FoldersCreated: []string{"PDFs"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := passChanged(tt.summary); got != tt.want {
				t.Fatalf("passChanged = %v, want %v", got, tt.want)
			}
		})
	}
}
