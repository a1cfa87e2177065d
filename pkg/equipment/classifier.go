package equipment

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Rule maps names matching Pattern to Category.
type Rule struct {
	Expr     string
	Category Category
	pattern  *regexp.Regexp
}

// Matches reports whether the normalised, space-padded name matches the rule.
func (r Rule) Matches(padded string) bool {
	return r.pattern.MatchString(padded)
}

// rule compiles expr as a whole-token alternation. Names are normalised to
// space-separated tokens and padded with one space on each side, so the
// surrounding spaces act as token boundaries. Use \S* to match a token
// prefix ("foam roll\S*" matches "foam rolling").
func rule(expr string, c Category) Rule {
	return Rule{
		Expr:     expr,
		Category: c,
		pattern:  regexp.MustCompile(` (?:` + expr + `) `),
	}
}

// defaultRules is the priority-ordered table. The first matching rule wins;
// entries are not disjoint, so order is load-bearing. Specific implements
// come first, then machines, then movement names implying a barbell, then
// broad bodyweight terms.
var defaultRules = []Rule{
	rule(`ab (?:wheel|roll\S*)`, AbWheel),
	rule(`trx|suspension(?: trainer)?`, TRX),
	rule(`land ?mine\S*`, Landmine),

	rule(`(?:double|dual|pair of|two|2) (?:dbs?|dumbb?ells?)|dbs`, DumbbellPair),
	rule(`db|dumbb?ells?`, Dumbbell),
	rule(`kbs?|ktbs?|kettle ?bells?`, Kettlebell),
	rule(`barbells?|bb`, Barbell),

	rule(`sand ?bags?`, Sandbag),
	rule(`sleds?|prowler`, Sled),
	rule(`wall ?balls?|wbs?`, WallBall),
	rule(`slam ?balls?|ball slams?|slams?`, SlamBall),
	rule(`med(?:icine)? ?balls?|mb`, MedicineBall),
	rule(`lacrosse(?: balls?)?|lax balls?`, LacrosseBall),
	rule(`foam roll\S*|fr`, FoamRoller),
	rule(`pvc(?: pipe)?|dowel|broomstick`, PVCPipe),
	rule(`jump ?ropes?|skipping|dus?|double unders?|single unders?`, JumpRope),
	rule(`box (?:jumps?|step\S*|overs?)|step ?ups?`, Box),

	rule(`cables?|lat pull ?downs?|pull ?downs?|face pulls?`, CableMachine),
	rule(`resistance bands?|mini ?bands?|bands?|banded`, ResistanceBand),
	rule(`rings?`, Rings),
	rule(`pull ?ups?|chin ?ups?|muscle ?ups?|toes to bar|t2b|ttb|bar hangs?|dead hangs?|hanging \S+`, PullUpBar),
	rule(`dips?|dip station`, DipStation),

	rule(`assault(?: bike)?|air ?bike|echo bike|airdyne`, AssaultBike),
	rule(`bike ?erg|bikes?|cycl\S*|spin(?: bikes?)?|spinning`, Bike),
	rule(`ski(?: ?ergs?)?`, SkiErg),
	rule(`(?:bent over|pendlay|barbell|yates) rows?`, Barbell),
	rule(`rows?|rowing|rower|c2|concept ?2|ergs?`, RowingMachine),
	rule(`treadmill|run\S*|jog\S*|sprints?`, Treadmill),

	rule(`air squats?|pistol\S*|jump squats?|bw|body ?weight`, Bodyweight),

	rule(`squats?|dead ?lifts?|rdls?|cleans?|snatch\S*|jerks?|thrusters?|press\S*|bench|hip thrusts?|good mornings?|overhead squats?`, Barbell),

	rule(`push ?ups?|burpees?|planks?|sit ?ups?|mountain climbers?|lunges?|walk\S*|stretch\S*|breath\S*|mobility|activation|scap\S*|shoulder\S*|crunch\S*|hollow\S*|bridge\S*`, Bodyweight),
}

// Classifier maps exercise names to equipment categories. It is immutable
// and safe for concurrent use.
type Classifier struct {
	overrides map[string]Category
	rules     []Rule
}

var defaultClassifier = New(nil)

// Default returns the classifier built from the built-in rule table.
func Default() *Classifier {
	return defaultClassifier
}

// New returns a classifier. Overrides map exact exercise names to a category
// and are consulted before the rule table. Override names are normalised the
// same way as classified names.
func New(overrides map[string]Category) *Classifier {
	c := &Classifier{
		overrides: make(map[string]Category, len(overrides)),
		rules:     defaultRules,
	}
	for name, cat := range overrides {
		c.overrides[Normalize(name)] = cat
	}
	return c
}

// Classify returns the category for name, falling back to Bodyweight.
// It never fails.
func (c *Classifier) Classify(name string) Category {
	cat, _ := c.Match(name)
	return cat
}

// Match is Classify that also reports whether an override or rule matched.
// A false result means the Bodyweight fallback was used.
func (c *Classifier) Match(name string) (Category, bool) {
	normalized := Normalize(name)
	if normalized == "" {
		return Bodyweight, false
	}
	if cat, ok := c.overrides[normalized]; ok {
		return cat, true
	}
	padded := " " + normalized + " "
	for _, r := range c.rules {
		if r.Matches(padded) {
			return r.Category, true
		}
	}
	return Bodyweight, false
}

// Rules returns the rule table in priority order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Normalize applies NFKC, case folding, and collapses every run of
// characters other than letters and digits into a single space.
func Normalize(name string) string {
	// Casers carry state, so each call gets its own.
	s := cases.Fold().String(norm.NFKC.String(name))

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}
