package player

import "github.com/behold-mycode/komari/bridge"

// Config is the per-character key bindings and movement toggles. Optional
// keys use bridge.KeyNone to mean unbound.
type Config struct {
	// JumpKey performs a normal jump and, pressed mid-air, a double jump.
	JumpKey bridge.KeyKind
	// TeleportKey is the mage teleport, replacing double jumps when bound.
	TeleportKey bridge.KeyKind
	// UpJumpKey is a class-specific upward jump. Unbound classes up jump by
	// holding up and jumping.
	UpJumpKey bridge.KeyKind
	// GrapplingKey is the rope lift / hook skill.
	GrapplingKey bridge.KeyKind
	// InteractKey interacts with runes and portals.
	InteractKey bridge.KeyKind
	// FamiliarKey opens the familiar setup menu.
	FamiliarKey bridge.KeyKind
	// CashShopKey opens the cash shop.
	CashShopKey bridge.KeyKind
	// ChangeChannelKey opens the channel selection menu.
	ChangeChannelKey bridge.KeyKind
	// MapleGuideKey opens the town guide menu.
	MapleGuideKey bridge.KeyKind

	// DisableAdjusting turns off medium walk adjustments; exact positions
	// still adjust.
	DisableAdjusting bool
	// AutoMobPlatformsPathing routes auto mob movement over detected
	// platforms instead of moving straight at the target.
	AutoMobPlatformsPathing bool
	// AutoMobPlatformsPathingUpJumpOnly restricts upward hops of the
	// platform pathing to up jumps, for classes whose grapple is unreliable.
	AutoMobPlatformsPathingUpJumpOnly bool
}

func (c Config) hasTeleportKey() bool  { return c.TeleportKey != bridge.KeyNone }
func (c Config) hasUpJumpKey() bool    { return c.UpJumpKey != bridge.KeyNone }
func (c Config) hasGrapplingKey() bool { return c.GrapplingKey != bridge.KeyNone }
