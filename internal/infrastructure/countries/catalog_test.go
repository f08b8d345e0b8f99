package countries

import (
	"testing"

	"github.com/userhub/identity-api/internal/core/domain"
)

func TestCatalog_FindByName(t *testing.T) {
	c := NewCatalog()

	got, ok := c.FindByName("  greece ")
	if !ok {
		t.Fatalf("expected Greece to resolve")
	}
	if got.Name != "Greece" || got.ISO != "GR" {
		t.Fatalf("unexpected country: %+v", got)
	}

	if _, ok := c.FindByName("Atlantis"); ok {
		t.Fatalf("unknown country must not resolve")
	}
	if _, ok := c.FindByName(""); ok {
		t.Fatalf("empty name must not resolve")
	}
}

func TestCatalog_Custom(t *testing.T) {
	c := NewCatalog(domain.Country{Name: "Wakanda", ISO: "WK"})
	if _, ok := c.FindByName("Greece"); ok {
		t.Fatalf("custom catalog must not include defaults")
	}
	if got, ok := c.FindByName("wakanda"); !ok || got.ISO != "WK" {
		t.Fatalf("expected Wakanda, got %+v %v", got, ok)
	}
}
