package stats

import "errors"

// ErrUnknownWeapon is returned by WeaponSlot for a means of death that has no
// slot in the weapon vector.
var ErrUnknownWeapon = errors.New("unknown weapon")

// Weapon is an index into the weapon-frag vector.
type Weapon int

// Weapon slots, in report column order.
const (
	Shotgun Weapon = iota
	Gauntlet
	Machinegun
	Grenade
	GrenadeSplash
	Rocket
	RocketSplash
	Plasma
	PlasmaSplash
	Railgun
	Lightning
	BFG
	BFGSplash
	Telefrag
	Nailgun
	Chaingun

	// NumWeapons is the length of the weapon vector.
	NumWeapons
)

var weaponNames = [NumWeapons]string{
	"SHOTGUN", "GAUNTLET", "MACHINEGUN", "GRENADE", "GRENADE_SPLASH",
	"ROCKET", "ROCKET_SPLASH", "PLASMA", "PLASMA_SPLASH", "RAILGUN",
	"LIGHTNING", "BFG10K", "BFG10K_SPLASH", "TELEFRAG", "NAIL", "CHAIN",
}

// modSlots maps engine means-of-death names to weapon slots.
var modSlots = map[string]Weapon{
	"MOD_SHOTGUN":        Shotgun,
	"MOD_GAUNTLET":       Gauntlet,
	"MOD_MACHINEGUN":     Machinegun,
	"MOD_GRENADE":        Grenade,
	"MOD_GRENADE_SPLASH": GrenadeSplash,
	"MOD_ROCKET":         Rocket,
	"MOD_ROCKET_SPLASH":  RocketSplash,
	"MOD_PLASMA":         Plasma,
	"MOD_PLASMA_SPLASH":  PlasmaSplash,
	"MOD_RAILGUN":        Railgun,
	"MOD_LIGHTNING":      Lightning,
	"MOD_BFG":            BFG,
	"MOD_BFG_SPLASH":     BFGSplash,
	"MOD_TELEFRAG":       Telefrag,
	"MOD_NAIL":           Nailgun,
	"MOD_CHAINGUN":       Chaingun,
}

func (w Weapon) String() string {
	if w < 0 || w >= NumWeapons {
		return "UNKNOWN"
	}
	return weaponNames[w]
}

// WeaponSlot returns the slot for a means-of-death name such as "MOD_RAILGUN".
func WeaponSlot(mod string) (Weapon, error) {
	w, ok := modSlots[mod]
	if !ok {
		return 0, ErrUnknownWeapon
	}
	return w, nil
}

// Weapons is a per-weapon frag vector.
type Weapons [NumWeapons]int

// Sum returns the total number of frags in the vector.
func (v Weapons) Sum() int {
	total := 0
	for _, n := range v {
		total += n
	}
	return total
}

func (v Weapons) add(o Weapons) Weapons {
	for i := range v {
		v[i] += o[i]
	}
	return v
}
