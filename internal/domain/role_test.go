package domain

import "testing"

func TestNormalizeRoleAliases(t *testing.T) {
	cases := map[string]Role{
		"admin":       RoleAdmin,
		"ADMIN":       RoleAdmin,
		"  Admin  ":   RoleAdmin,
		"super admin": RoleAdmin,
		"SUPERADMIN":  RoleAdmin,
		"owner":       RoleAdmin,
		"manager":     RoleManager,
		"team lead":   RoleManager,
		"TEAM_LEAD":   RoleManager,
		"lead":        RoleManager,
		"member":      RoleMember,
		"user":        RoleMember,
		"employee":    RoleMember,
		"staff":       RoleMember,
		"agent":       RoleMember,
		"viewer":      RoleViewer,
		"guest":       RoleViewer,
		"readonly":    RoleViewer,
		"READ_ONLY":   RoleViewer,
	}
	for input, want := range cases {
		if got := NormalizeRole(input); got != want {
			t.Errorf("NormalizeRole(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeRoleUnknown(t *testing.T) {
	for _, input := range []string{"", "   ", "root", "supervisor", "adm1n"} {
		if got := NormalizeRole(input); got != "" {
			t.Errorf("NormalizeRole(%q) = %q, want empty", input, got)
		}
	}
}

func TestRoleLevels(t *testing.T) {
	if RoleLevel(RoleAdmin) != 3 {
		t.Errorf("admin level = %d, want 3", RoleLevel(RoleAdmin))
	}
	if RoleLevel(RoleManager) != 2 {
		t.Errorf("manager level = %d, want 2", RoleLevel(RoleManager))
	}
	if RoleLevel(RoleMember) != RoleLevel(RoleViewer) {
		t.Error("member and viewer should share the bottom tier")
	}
	if RoleLevel(RoleMember) != 1 {
		t.Errorf("member level = %d, want 1", RoleLevel(RoleMember))
	}
	if RoleLevel(Role("UNKNOWN")) != 0 {
		t.Error("unknown role must carry zero capability")
	}
	if RoleLevel("") != 0 {
		t.Error("empty role must carry zero capability")
	}
}
