package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/behold-mycode/komari/bridge"
)

const validProfile = `name: test mage
keys:
  jump: space
  teleport: e
  grappling: r
  interact: y
  cash_shop: ` + "\"`\"" + `
  change_channel: o
  maple_guide: u
movement:
  disable_adjusting: true
  platforms_pathing: true
`

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidProfile(t *testing.T) {
	p, err := Load(writeProfile(t, validProfile))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "test mage" {
		t.Fatalf("unexpected name %q", p.Name)
	}

	cfg, err := p.Config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.JumpKey != bridge.KeySpace {
		t.Fatalf("unexpected jump key %v", cfg.JumpKey)
	}
	if cfg.TeleportKey != bridge.KeyE || cfg.GrapplingKey != bridge.KeyR {
		t.Fatalf("optional keys not resolved: %+v", cfg)
	}
	if cfg.UpJumpKey != bridge.KeyNone || cfg.FamiliarKey != bridge.KeyNone {
		t.Fatalf("unset optional keys must stay unbound: %+v", cfg)
	}
	if !cfg.DisableAdjusting || !cfg.AutoMobPlatformsPathing || cfg.AutoMobPlatformsPathingUpJumpOnly {
		t.Fatalf("movement toggles wrong: %+v", cfg)
	}
}

func TestLoadRejectsMissingRequiredKey(t *testing.T) {
	content := `name: broken
keys:
  jump: space
  interact: y
`
	if _, err := Load(writeProfile(t, content)); err == nil {
		t.Fatal("expected error for missing required keys")
	}
}

func TestLoadRejectsUnknownKeyName(t *testing.T) {
	content := `name: broken
keys:
  jump: space
  teleport: not-a-key
  interact: y
  cash_shop: i
  change_channel: o
  maple_guide: u
`
	if _, err := Load(writeProfile(t, content)); err == nil {
		t.Fatal("expected error for unknown key name")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
