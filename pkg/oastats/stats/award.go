package stats

// Award is an index into the award-count vector.
type Award int

// Counted awards, sorted by their one-letter code.
const (
	Assist Award = iota
	Capture
	Defence
	Excellent
	Impressive

	// NumAwards is the length of the award vector.
	NumAwards
)

var awardNames = [NumAwards]string{"ASSIST", "CAPTURE", "DEFENCE", "EXCELLENT", "IMPRESSIVE"}

func (a Award) String() string {
	if a < 0 || a >= NumAwards {
		return "UNKNOWN"
	}
	return awardNames[a]
}

// ParseAward maps the award word of an Award line to a counted award.
// Awards that are not counted (GAUNTLET) report false.
func ParseAward(word string) (Award, bool) {
	for i, name := range awardNames {
		if name == word {
			return Award(i), true
		}
	}
	return 0, false
}

// Awards is a per-award count vector.
type Awards [NumAwards]int

func (v Awards) add(o Awards) Awards {
	for i := range v {
		v[i] += o[i]
	}
	return v
}

// CTF event slots reported per player. Captures are covered by the CAPTURE
// award.
const (
	FlagsTaken = iota
	FlagsReturned
	CarriersFragged

	numCTF
)

// CTFEvents is the (taken, returned, carrier-fragged) triple.
type CTFEvents [numCTF]int

func (v CTFEvents) add(o CTFEvents) CTFEvents {
	for i := range v {
		v[i] += o[i]
	}
	return v
}
