package campaign

import (
	"fmt"

	"github.com/OCAP2/armory/internal/quartermaster"
	"github.com/OCAP2/armory/internal/unit"
)

// DemoLance builds a mixed company with some battle damage: a mech, a
// protomech, a battle armor point, an infantry platoon and a dropship.
func DemoLance() []*unit.Unit {
	return []*unit.Unit{demoMech(), demoProto(), demoPoint(), demoPlatoon(), demoDropship()}
}

func demoMech() *unit.Unit {
	u := unit.New("Atlas AS7-D", unit.KindMech, 100)
	u.EngineRating = 300
	lt := u.AddLocation("Left Torso")
	ct := u.AddLocation("Center Torso")
	rt := u.AddLocation("Right Torso")
	ra := u.AddLocation("Right Arm")
	la := u.AddLocation("Left Arm")

	lrm := u.AddMount("is-lrm-20", lt)
	lrmAmmo := u.AddMount("is-ammo-lrm-20", lt)
	lrmAmmo.Capacity, lrmAmmo.Shots = 6, 2
	lrm.Linked = lrmAmmo.Index

	ac := u.AddMount("is-ac-10", ra)
	acAmmo := u.AddMount("is-ammo-ac-10", rt)
	acAmmo.Capacity = 10
	ac.Linked = acAmmo.Index

	hs := u.AddMount("heat-sink", ct)
	hs.Hits = 1
	u.AddMount("jump-jet", ct)
	masc := u.AddMount("is-masc", ct)
	masc.Hits = 1
	tc := u.AddMount("targeting-computer", la)
	tc.Destroyed, tc.Missing = true, true
	return u
}

func demoProto() *unit.Unit {
	u := unit.New("Minotaur", unit.KindProtoMech, 9)
	body := u.AddLocation("Torso")
	srm := u.AddMount("is-srm-6", body)
	ammo := u.AddMount("is-ammo-srm-6-inferno", body)
	ammo.Capacity, ammo.Shots = 15, 3
	srm.Linked = ammo.Index
	return u
}

func demoPoint() *unit.Unit {
	u := unit.New("Elemental Point", unit.KindBattleArmor, 1)
	u.SquadSize, u.Troopers = 5, 4
	squad := u.AddLocation("Squad")
	ammo := u.AddMount("ba-ammo-srm-2", squad)
	ammo.Capacity, ammo.Shots = 4, 8
	for i := range 5 {
		jp := u.AddMount("ba-jump-pack", u.AddLocation(fmt.Sprintf("Trooper %d", i+1)))
		jp.Trooper = i
	}
	return u
}

func demoPlatoon() *unit.Unit {
	u := unit.New("Foot Platoon", unit.KindInfantry, 3)
	u.SquadSize, u.Troopers = 7, 7
	pl := u.AddLocation("Platoon")
	rifle := u.AddMount("inf-auto-rifle", pl)
	std := u.AddMount("inf-ammo-auto-rifle", pl)
	std.Size, std.Shots = 3, 20
	ap := u.AddMount("inf-ammo-auto-rifle-ap", pl)
	ap.Size, ap.Shots = 1, 10
	rifle.Linked = std.Index
	std.Linked = ap.Index
	return u
}

func demoDropship() *unit.Unit {
	u := unit.New("Union Dropship", unit.KindLargeCraft, 3600)
	nose := u.AddLocation("Nose")
	aft := u.AddLocation("Aft")

	lrmBay := u.AddMount("is-lrm-20", nose)
	a := u.AddMount("is-ammo-lrm-20", nose)
	a.Bay, a.Size, a.Shots = lrmBay.Index, 3, 6
	b := u.AddMount("is-ammo-lrm-20-swarm", nose)
	b.Bay, b.Size = lrmBay.Index, 2

	capBay := u.AddMount("cap-ammo-barracuda", aft)
	capBay.Bay, capBay.Size = capBay.Index, 60
	return u
}

// SeedDemoStock stocks the pool for the demo lance.
func SeedDemoStock(q *quartermaster.Quartermaster) error {
	for id, tons := range map[string]int{
		"is-ammo-lrm-20":        3,
		"is-ammo-lrm-20-swarm":  1,
		"is-ammo-ac-10":         1,
		"is-ammo-srm-6-inferno": 1,
		"ba-ammo-srm-2":         1,
		"cap-ammo-barracuda":    60,
	} {
		if _, err := q.AddTons(id, tons); err != nil {
			return err
		}
	}
	for id, clips := range map[string]int{
		"inf-ammo-auto-rifle":    5,
		"inf-ammo-auto-rifle-ap": 2,
	} {
		if _, err := q.AddClips(id, "inf-auto-rifle", clips); err != nil {
			return err
		}
	}
	return nil
}
