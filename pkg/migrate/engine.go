// Package migrate advances documents through schema versions.
//
// A migration is always the sequential composition of single-version steps.
// Each step walks the whole document once, applying its rules to every
// object, so every step can be audited and tested on its own.
package migrate

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zohar-ui/ParserZamaActive/pkg/equipment"
	"github.com/zohar-ui/ParserZamaActive/pkg/transform"
	"github.com/zohar-ui/ParserZamaActive/pkg/tree"
)

// Version is a schema version such as "3.1".
type Version string

// ParseVersion accepts "3.1" or "v3.1".
func ParseVersion(s string) (Version, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrUnknownVersion)
	}
	return Version(s), nil
}

// Errors returned by Engine.
var (
	ErrUnknownVersion = errors.New("unknown schema version")
	ErrNoPath         = errors.New("no migration path")
)

// Step advances a document from one version to the next.
type Step struct {
	From        Version
	To          Version
	Description string
	Rules       []transform.Rule
}

// StepReport summarizes one applied step.
type StepReport struct {
	From    Version                      `json:"from"`
	To      Version                      `json:"to"`
	Changes map[transform.ChangeKind]int `json:"changes"`
	Flags   int                          `json:"flags"`
}

// Report summarizes a migration of one document.
type Report struct {
	From              Version                      `json:"from"`
	To                Version                      `json:"to"`
	Steps             []StepReport                 `json:"steps"`
	Changes           map[transform.ChangeKind]int `json:"changes"`
	EquipmentAssigned int                          `json:"equipment_assigned"`
	Equipment         map[string]int               `json:"equipment,omitempty"`
	Fallbacks         int                          `json:"fallbacks"`
	Flags             []transform.Flag             `json:"flags"`
}

func newReport(from, to Version) *Report {
	return &Report{
		From:      from,
		To:        to,
		Steps:     []StepReport{},
		Changes:   make(map[transform.ChangeKind]int),
		Equipment: make(map[string]int),
		Flags:     []transform.Flag{},
	}
}

// Total returns the number of changes made.
func (r *Report) Total() int {
	n := 0
	for _, c := range r.Changes {
		n += c
	}
	return n
}

// Changed reports whether the migration modified the document.
func (r *Report) Changed() bool {
	return r.Total() > 0
}

func (r *Report) add(step Step, rec *transform.Recorder) {
	sr := StepReport{
		From:    step.From,
		To:      step.To,
		Changes: make(map[transform.ChangeKind]int, len(rec.Counts)),
		Flags:   len(rec.Flags),
	}
	for k, n := range rec.Counts {
		sr.Changes[k] = n
		r.Changes[k] += n
	}
	r.Steps = append(r.Steps, sr)
	r.Flags = append(r.Flags, rec.Flags...)
	r.EquipmentAssigned += rec.Counts[transform.ChangeClassify]
	r.Fallbacks += rec.Fallbacks
	for cat, n := range rec.Equipment {
		r.Equipment[cat.String()] += n
	}
}

// Config configures an Engine.
type Config struct {
	// Steps defaults to DefaultSteps(Classifier).
	Steps      []Step
	Classifier *equipment.Classifier
	Logger     *slog.Logger
}

// Engine applies migration steps. It holds no per-document state and is safe
// for concurrent use.
type Engine struct {
	steps    []Step
	versions []Version
	logger   *slog.Logger
}

// New creates an engine. Steps must form one contiguous chain.
func New(cfg Config) (*Engine, error) {
	steps := cfg.Steps
	if steps == nil {
		steps = DefaultSteps(cfg.Classifier)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("no migration steps")
	}

	versions := []Version{steps[0].From}
	for i, s := range steps {
		if s.From == s.To {
			return nil, fmt.Errorf("step %d: from and to are both %s", i, s.From)
		}
		if s.From != versions[len(versions)-1] {
			return nil, fmt.Errorf("step %d: starts at %s, expected %s", i, s.From, versions[len(versions)-1])
		}
		for _, v := range versions {
			if v == s.To {
				return nil, fmt.Errorf("step %d: version %s appears twice", i, s.To)
			}
		}
		versions = append(versions, s.To)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{steps: steps, versions: versions, logger: logger}, nil
}

// Steps returns the engine's steps, oldest first.
func (e *Engine) Steps() []Step {
	out := make([]Step, len(e.steps))
	copy(out, e.steps)
	return out
}

// Versions returns every known version, oldest first.
func (e *Engine) Versions() []Version {
	out := make([]Version, len(e.versions))
	copy(out, e.versions)
	return out
}

// Latest returns the newest version the engine can migrate to.
func (e *Engine) Latest() Version {
	return e.versions[len(e.versions)-1]
}

func (e *Engine) index(v Version) (int, error) {
	for i, known := range e.versions {
		if known == v {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVersion, v)
}

// Path returns the steps that migrate from one version to another.
// It is empty when from equals to.
func (e *Engine) Path(from, to Version) ([]Step, error) {
	i, err := e.index(from)
	if err != nil {
		return nil, err
	}
	j, err := e.index(to)
	if err != nil {
		return nil, err
	}
	if i > j {
		return nil, fmt.Errorf("%w: %s -> %s goes backwards", ErrNoPath, from, to)
	}
	return e.steps[i:j], nil
}

// Migrate mutates doc in place from one version to another and returns it
// with a report of what changed. Running a step over an already-migrated
// document makes no changes.
func (e *Engine) Migrate(doc tree.Value, from, to Version) (tree.Value, *Report, error) {
	path, err := e.Path(from, to)
	if err != nil {
		return nil, nil, err
	}

	report := newReport(from, to)
	for _, step := range path {
		rec := transform.NewRecorder()
		transform.Apply(doc, step.Rules, rec)
		report.add(step, rec)

		e.logger.Debug("applied migration step",
			slog.String("from", string(step.From)),
			slog.String("to", string(step.To)),
			slog.Int("changes", rec.Total()),
			slog.Int("flags", len(rec.Flags)))
	}
	return doc, report, nil
}
