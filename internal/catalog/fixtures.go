package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"maps"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/claude/athletconnect/internal/models"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// Seed is the on-disk shape of a fixture catalog.
type Seed struct {
	Athletes      []models.Athlete      `yaml:"athletes"`
	Tests         []models.FitnessTest  `yaml:"tests"`
	Opportunities []models.Opportunity  `yaml:"opportunities"`
	Conversations []models.Conversation `yaml:"conversations"`
}

// DefaultSeed parses the embedded fixture catalog.
func DefaultSeed() (*Seed, error) {
	return ParseSeed(fixturesYAML)
}

// ParseSeed parses a fixture catalog and checks ids are unique and
// references resolve.
func ParseSeed(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}

	athletes := make(map[string]bool, len(s.Athletes))
	for _, a := range s.Athletes {
		if a.ID == "" {
			return nil, fmt.Errorf("fixtures: athlete %q has no id", a.Name)
		}
		if athletes[a.ID] {
			return nil, fmt.Errorf("fixtures: duplicate athlete id %q", a.ID)
		}
		athletes[a.ID] = true
	}
	for _, o := range s.Opportunities {
		if !o.Type.Valid() {
			return nil, fmt.Errorf("fixtures: opportunity %q has unknown type %q", o.ID, o.Type)
		}
	}
	for _, c := range s.Conversations {
		for _, id := range c.ParticipantIDs {
			if !athletes[id] {
				return nil, fmt.Errorf("fixtures: conversation %q references unknown athlete %q", c.ID, id)
			}
		}
	}
	return &s, nil
}

// Fixtures is an in-memory Provider. It is safe for concurrent use and
// never hands out references to its internal state.
type Fixtures struct {
	mu   sync.RWMutex
	seed Seed
}

var _ Provider = (*Fixtures)(nil)

// NewFixtures returns a provider over the embedded fixture catalog.
func NewFixtures() (*Fixtures, error) {
	s, err := DefaultSeed()
	if err != nil {
		return nil, err
	}
	return NewFixturesFromSeed(s), nil
}

// NewFixturesFromSeed returns a provider over a copy of s.
func NewFixturesFromSeed(s *Seed) *Fixtures {
	f := &Fixtures{}
	for _, a := range s.Athletes {
		f.seed.Athletes = append(f.seed.Athletes, cloneAthlete(a))
	}
	for _, t := range s.Tests {
		f.seed.Tests = append(f.seed.Tests, cloneTest(t))
	}
	for _, o := range s.Opportunities {
		f.seed.Opportunities = append(f.seed.Opportunities, cloneOpportunity(o))
	}
	for _, c := range s.Conversations {
		c.ParticipantIDs = slices.Clone(c.ParticipantIDs)
		c.Participants = nil
		f.seed.Conversations = append(f.seed.Conversations, c)
	}
	return f
}

func (f *Fixtures) Athlete(_ context.Context, id string) (*models.Athlete, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	i := f.athleteIndex(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	a := cloneAthlete(f.seed.Athletes[i])
	return &a, nil
}

func (f *Fixtures) Athletes(context.Context) ([]models.Athlete, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.athletesLocked(), nil
}

func (f *Fixtures) Leaderboard(_ context.Context, sport, region string) ([]models.Athlete, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return RankLeaderboard(f.athletesLocked(), sport, region), nil
}

func (f *Fixtures) Opportunities(context.Context) ([]models.Opportunity, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.Opportunity, 0, len(f.seed.Opportunities))
	for _, o := range f.seed.Opportunities {
		out = append(out, cloneOpportunity(o))
	}
	return out, nil
}

// ApplyOpportunity marks an opportunity as applied. Applying twice is not an error.
func (f *Fixtures) ApplyOpportunity(_ context.Context, id string) (*models.Opportunity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.seed.Opportunities {
		if f.seed.Opportunities[i].ID == id {
			f.seed.Opportunities[i].Applied = true
			o := cloneOpportunity(f.seed.Opportunities[i])
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

func (f *Fixtures) Tests(context.Context) ([]models.FitnessTest, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.FitnessTest, 0, len(f.seed.Tests))
	for _, t := range f.seed.Tests {
		out = append(out, cloneTest(t))
	}
	return out, nil
}

func (f *Fixtures) Test(_ context.Context, id string) (*models.FitnessTest, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.seed.Tests {
		if t.ID == id {
			c := cloneTest(t)
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

// Conversations returns every conversation with its participants resolved.
func (f *Fixtures) Conversations(context.Context) ([]models.Conversation, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.Conversation, 0, len(f.seed.Conversations))
	for _, c := range f.seed.Conversations {
		c.ParticipantIDs = slices.Clone(c.ParticipantIDs)
		c.Participants = make([]models.Athlete, 0, len(c.ParticipantIDs))
		for _, id := range c.ParticipantIDs {
			if i := f.athleteIndex(id); i >= 0 {
				c.Participants = append(c.Participants, cloneAthlete(f.seed.Athletes[i]))
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// Login is a placeholder: any non-empty email and password sign in as the
// first athlete.
func (f *Fixtures) Login(_ context.Context, email, password string) (*models.Athlete, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.seed.Athletes) == 0 {
		return nil, ErrNotFound
	}
	a := cloneAthlete(f.seed.Athletes[0])
	return &a, nil
}

func (f *Fixtures) RecordResult(_ context.Context, athleteID string, result models.TestResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.athleteIndex(athleteID)
	if i < 0 {
		return ErrNotFound
	}
	f.seed.Athletes[i].TestResults = append(f.seed.Athletes[i].TestResults, result)
	return nil
}

func (f *Fixtures) athleteIndex(id string) int {
	return slices.IndexFunc(f.seed.Athletes, func(a models.Athlete) bool { return a.ID == id })
}

func (f *Fixtures) athletesLocked() []models.Athlete {
	out := make([]models.Athlete, 0, len(f.seed.Athletes))
	for _, a := range f.seed.Athletes {
		out = append(out, cloneAthlete(a))
	}
	return out
}

func cloneAthlete(a models.Athlete) models.Athlete {
	a.PersonalBests = maps.Clone(a.PersonalBests)
	a.TestResults = slices.Clone(a.TestResults)
	a.Achievements = slices.Clone(a.Achievements)
	a.Videos = slices.Clone(a.Videos)
	return a
}

func cloneTest(t models.FitnessTest) models.FitnessTest {
	t.Equipment = slices.Clone(t.Equipment)
	t.Instructions = slices.Clone(t.Instructions)
	return t
}

func cloneOpportunity(o models.Opportunity) models.Opportunity {
	o.Requirements = slices.Clone(o.Requirements)
	return o
}
