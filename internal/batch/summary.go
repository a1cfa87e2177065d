package batch

import (
	"slices"
	"time"

	"github.com/zohar-ui/ParserZamaActive/internal/state"
	"github.com/zohar-ui/ParserZamaActive/pkg/transform"
	"github.com/zohar-ui/ParserZamaActive/pkg/validate"
)

// Summary aggregates the outcomes of a batch.
type Summary struct {
	RunID     string        `json:"run_id,omitempty"`
	Kind      state.RunKind `json:"kind"`
	Duration  time.Duration `json:"duration"`
	Documents int           `json:"documents"`
	// Errors counts documents that could not be processed.
	Errors  int `json:"errors"`
	Changed int `json:"changed"`
	Written int `json:"written"`

	Changes   map[transform.ChangeKind]int `json:"changes,omitempty"`
	Flags     int                          `json:"flags"`
	Equipment map[string]int               `json:"equipment,omitempty"`
	Fallbacks int                          `json:"fallbacks"`

	// Validation counts; documents with errors are excluded.
	Passed  int `json:"passed"`
	Warned  int `json:"warned"`
	Failed  int `json:"failed"`
	Checked int `json:"checked"`

	Outcomes []Outcome `json:"outcomes"`
}

// Summarize builds a summary from per-document outcomes.
func Summarize(kind state.RunKind, outcomes []Outcome) *Summary {
	s := &Summary{
		Kind:      kind,
		Documents: len(outcomes),
		Changes:   make(map[transform.ChangeKind]int),
		Equipment: make(map[string]int),
		Outcomes:  outcomes,
	}
	for _, o := range outcomes {
		if o.Err != nil {
			s.Errors++
			continue
		}
		if o.Changed {
			s.Changed++
		}
		if o.Written {
			s.Written++
		}
		if m := o.Migration; m != nil {
			for k, n := range m.Changes {
				s.Changes[k] += n
			}
			s.Flags += len(m.Flags)
			s.Fallbacks += m.Fallbacks
			for cat, n := range m.Equipment {
				s.Equipment[cat] += n
			}
		}
		if v := o.Validation; v != nil {
			s.Checked++
			switch {
			case !v.OK():
				s.Failed++
			case v.Warnings > 0:
				s.Warned++
			default:
				s.Passed++
			}
		}
	}
	return s
}

// OK reports whether every document was processed and none failed
// validation.
func (s *Summary) OK() bool {
	return s.Errors == 0 && s.Failed == 0
}

// Verdict grades the validation pass rate. Warnings count as passing.
func (s *Summary) Verdict() string {
	return validate.Verdict(s.Passed+s.Warned, s.Checked+s.Errors)
}

// ChangeKinds returns the change kinds seen, sorted.
func (s *Summary) ChangeKinds() []transform.ChangeKind {
	kinds := make([]transform.ChangeKind, 0, len(s.Changes))
	for k := range s.Changes {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// EquipmentCategories returns the equipment categories seen, most used
// first.
func (s *Summary) EquipmentCategories() []string {
	cats := make([]string, 0, len(s.Equipment))
	for c := range s.Equipment {
		cats = append(cats, c)
	}
	slices.SortFunc(cats, func(a, b string) int {
		if d := s.Equipment[b] - s.Equipment[a]; d != 0 {
			return d
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return cats
}

// Errored returns the outcomes that could not be processed.
func (s *Summary) Errored() []Outcome {
	var out []Outcome
	for _, o := range s.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}
