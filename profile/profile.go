// Package profile loads per-character profiles: key bindings and movement
// toggles, stored as YAML so players can edit them by hand.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/player"
)

// Profile is the on-disk shape of a character profile. Key fields hold the
// profile key names understood by bridge.ParseKey; optional keys stay empty.
type Profile struct {
	Name string `yaml:"name"`

	Keys struct {
		Jump          string `yaml:"jump"`
		Teleport      string `yaml:"teleport"`
		UpJump        string `yaml:"up_jump"`
		Grappling     string `yaml:"grappling"`
		Interact      string `yaml:"interact"`
		Familiar      string `yaml:"familiar"`
		CashShop      string `yaml:"cash_shop"`
		ChangeChannel string `yaml:"change_channel"`
		MapleGuide    string `yaml:"maple_guide"`
	} `yaml:"keys"`

	Movement struct {
		DisableAdjusting        bool `yaml:"disable_adjusting"`
		PlatformsPathing        bool `yaml:"platforms_pathing"`
		PlatformsPathingUpJumps bool `yaml:"platforms_pathing_up_jumps_only"`
	} `yaml:"movement"`
}

// Load reads and validates the profile at path.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("error reading profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("error decoding profile: %w", err)
	}
	if _, err := p.Config(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Config converts the profile to the player configuration, resolving key
// names. Required keys must parse; optional ones may be empty.
func (p Profile) Config() (player.Config, error) {
	var cfg player.Config
	required := []struct {
		name string
		dst  *bridge.KeyKind
	}{
		{p.Keys.Jump, &cfg.JumpKey},
		{p.Keys.Interact, &cfg.InteractKey},
		{p.Keys.CashShop, &cfg.CashShopKey},
		{p.Keys.ChangeChannel, &cfg.ChangeChannelKey},
		{p.Keys.MapleGuide, &cfg.MapleGuideKey},
	}
	for _, r := range required {
		key, ok := bridge.ParseKey(r.name)
		if !ok || key == bridge.KeyNone {
			return player.Config{}, fmt.Errorf("profile %q: unknown or missing key %q", p.Name, r.name)
		}
		*r.dst = key
	}
	optional := []struct {
		name string
		dst  *bridge.KeyKind
	}{
		{p.Keys.Teleport, &cfg.TeleportKey},
		{p.Keys.UpJump, &cfg.UpJumpKey},
		{p.Keys.Grappling, &cfg.GrapplingKey},
		{p.Keys.Familiar, &cfg.FamiliarKey},
	}
	for _, o := range optional {
		if o.name == "" {
			continue
		}
		key, ok := bridge.ParseKey(o.name)
		if !ok {
			return player.Config{}, fmt.Errorf("profile %q: unknown key %q", p.Name, o.name)
		}
		*o.dst = key
	}

	cfg.DisableAdjusting = p.Movement.DisableAdjusting
	cfg.AutoMobPlatformsPathing = p.Movement.PlatformsPathing
	cfg.AutoMobPlatformsPathingUpJumpOnly = p.Movement.PlatformsPathingUpJumps
	return cfg, nil
}
