package auth

import "testing"

func TestHashVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Sup3r$ecret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "Sup3r$ecret" {
		t.Fatal("password stored in the clear")
	}
	if !VerifyPassword(hash, "Sup3r$ecret") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("wrong password accepted")
	}
}

func TestMasterKeyMatch(t *testing.T) {
	if MasterKeyMatch("anything", "") {
		t.Fatal("empty master key must disable the bypass")
	}
	if !MasterKeyMatch("break-glass", "break-glass") {
		t.Fatal("exact master key rejected")
	}
	if MasterKeyMatch("break-glas", "break-glass") {
		t.Fatal("near-miss master key accepted")
	}
}

func TestHashTokenStable(t *testing.T) {
	a := HashToken("refresh-token")
	b := HashToken("refresh-token")
	if a != b {
		t.Fatal("token hash must be deterministic")
	}
	if a == "refresh-token" {
		t.Fatal("token stored in the clear")
	}
	if HashToken("other") == a {
		t.Fatal("distinct tokens share a hash")
	}
}

func TestParseRole(t *testing.T) {
	if role, err := ParseRole("Admin"); err != nil || role != RoleAdmin {
		t.Fatalf("expected admin, got %v %v", role, err)
	}
	if role, err := ParseRole("superadmin"); err != nil || role != RoleSuperadmin {
		t.Fatalf("expected superadmin, got %v %v", role, err)
	}
	if _, err := ParseRole("root"); err == nil {
		t.Fatal("unknown role accepted")
	}
}
