package domain_test

import (
	"testing"

	"github.com/brickgo/crm-bfa-go/internal/domain"
)

func TestNormalizeStatus_WonAliases(t *testing.T) {
	for _, raw := range []string{"converted", "won", "gagné", "qualifié", "Converted", " GAGNÉ "} {
		st := domain.NormalizeStatus(raw)
		if !st.IsWon() {
			t.Errorf("NormalizeStatus(%q).IsWon() = false, want true", raw)
		}
	}
}

func TestNormalizeStatus_NotWon(t *testing.T) {
	for _, raw := range []string{"new", "Nouveau", "En cours", "Perdu", "", "weird-status"} {
		if domain.NormalizeStatus(raw).IsWon() {
			t.Errorf("NormalizeStatus(%q).IsWon() = true, want false", raw)
		}
	}
}

func TestNormalizeStatus_UnknownPassthrough(t *testing.T) {
	st := domain.NormalizeStatus("weird-status")
	if st.Code != domain.StatusUnknown {
		t.Errorf("code = %v, want StatusUnknown", st.Code)
	}
	if st.Label() != "weird-status" {
		t.Errorf("Label() = %q, want raw value back", st.Label())
	}
	if st.CanonicalValue() != "weird-status" {
		t.Errorf("CanonicalValue() = %q, want raw value back", st.CanonicalValue())
	}
}

func TestProfile_FullNameFallback(t *testing.T) {
	p := domain.Profile{Email: "rep@corp.test"}
	if p.FullName() != "rep@corp.test" {
		t.Errorf("FullName = %q, want email fallback", p.FullName())
	}
	p.FirstName, p.LastName = "Awa", "Koné"
	if p.FullName() != "Awa Koné" {
		t.Errorf("FullName = %q", p.FullName())
	}
}

func TestProfile_IsActive(t *testing.T) {
	if (&domain.Profile{Role: domain.RoleBlocked}).IsActive() {
		t.Error("blocked profile must not be active")
	}
	if !(&domain.Profile{Role: domain.RoleCommercial}).IsActive() {
		t.Error("commercial profile must be active")
	}
}

func TestProspect_AssigneeName(t *testing.T) {
	p := domain.Prospect{}
	if p.AssigneeName() != "" {
		t.Errorf("unassigned AssigneeName = %q, want empty", p.AssigneeName())
	}
	p.AssignedRep = &domain.RepBadge{FirstName: "Jean", LastName: "Dupont"}
	if p.AssigneeName() != "Jean Dupont" {
		t.Errorf("AssigneeName = %q", p.AssigneeName())
	}
}
