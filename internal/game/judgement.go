package game

import "math"

type Tier uint8

const (
	Perfect Tier = iota
	Great
	Good
	Bad
	Poor
	Miss
)

var tierNames = [...]string{"PERFECT", "GREAT", "GOOD", "BAD", "POOR", "MISS"}

func (t Tier) String() string {
	if int(t) < len(tierNames) {
		return tierNames[t]
	}
	return "UNKNOWN"
}

// Success tiers keep the combo going
func (t Tier) Success() bool {
	return t <= Good
}

const Tiers = int(Miss) + 1

// Judgement is one row of the window table. Window is the largest absolute
// corrected delta, in ms, that still earns the tier.
type Judgement struct {
	Tier   Tier
	Window float64
	Name   string
}

// Judgements is a window table, ordered from the tightest window out.
type Judgements []Judgement

// Float noise from subtracting ms timestamps must not push an exact
// boundary hit into the next tier.
const epsilon = 1e-9

var DefaultJudgements = Judgements{
	{Tier: Perfect, Window: 16.7, Name: Perfect.String()},
	{Tier: Great, Window: 33.3, Name: Great.String()},
	{Tier: Good, Window: 83.3, Name: Good.String()},
	{Tier: Bad, Window: 166.7, Name: Bad.String()},
	{Tier: Poor, Window: 250.0, Name: Poor.String()},
}

// Widest is the outermost window, anything further away is a miss.
func (js Judgements) Widest() float64 {
	if len(js) == 0 {
		return 0
	}
	return js[len(js)-1].Window
}

// Within reports whether a corrected delta falls inside the widest window.
func (js Judgements) Within(delta float64) bool {
	return math.Abs(delta) <= js.Widest()+epsilon
}

// Classify picks the tier for a corrected delta, negative meaning early.
// Early hits are capped at Good, only late or exact input can earn the
// tighter tiers.
func (js Judgements) Classify(delta float64) Tier {
	abs := math.Abs(delta)
	tier := Miss
	for _, j := range js {
		if abs <= j.Window+epsilon {
			tier = j.Tier
			break
		}
	}
	if delta < -epsilon && tier < Good {
		tier = Good
	}
	return tier
}
