// Package tutorial guides users through memory-management concepts with
// step-by-step lessons driven against the simulation.
package tutorial

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/sarchlab/memsim/mem"
)

// Errors reported by the Manager.
var (
	ErrTutorialNotFound = errors.New("tutorial not found")
	ErrNoActiveTutorial = errors.New("no tutorial is currently active")
	ErrAtFirstStep      = errors.New("already at the first step")
)

// KindReset is the operation kind a step may expect beyond the simulation
// operations: it asks the user to reset and restart the simulation.
const KindReset mem.OpKind = "reset"

// An ExpectedOperation describes the operation a step asks the user to
// perform. Size and Address are nil when the step does not constrain them.
type ExpectedOperation struct {
	Kind    mem.OpKind `json:"type"`
	Size    *int       `json:"size,omitempty"`
	Address *int       `json:"address,omitempty"`
}

// A StepConfig carries the simulation parameters a step suggests. Zero
// fields leave the current setting unchanged.
type StepConfig struct {
	Technique  mem.Technique `json:"technique,omitempty"`
	MemorySize int           `json:"memory_size,omitempty"`
	PageSize   int           `json:"page_size,omitempty"`
	Algorithm  mem.Algorithm `json:"algorithm,omitempty"`
}

// A Step is one lesson page: explanatory content plus the task the user
// should perform before moving on.
type Step struct {
	Title    string             `json:"title"`
	Content  string             `json:"content"`
	Task     string             `json:"task"`
	Expected *ExpectedOperation `json:"expected_operation,omitempty"`
	Config   *StepConfig        `json:"config,omitempty"`
}

// A Tutorial is an ordered sequence of steps on one topic.
type Tutorial struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Steps       []Step `json:"-"`
}

// A Summary lists a tutorial with its completion status.
type Summary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// A StepView is the position-annotated step returned to the client.
type StepView struct {
	TutorialID    string `json:"tutorial_id"`
	TutorialTitle string `json:"tutorial_title"`
	StepIndex     int    `json:"step_index"`
	TotalSteps    int    `json:"total_steps"`
	Step          Step   `json:"step"`
	IsFirstStep   bool   `json:"is_first_step"`
	IsLastStep    bool   `json:"is_last_step"`
}

// A Manager tracks one tutorial session at a time and which tutorials have
// been completed. It is safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	tutorials []Tutorial
	index     map[string]int

	currentID   string
	currentStep int
	completed   map[string]bool
}

// NewManager creates a manager loaded with the built-in tutorials.
func NewManager() *Manager {
	m := &Manager{
		tutorials: builtinTutorials(),
		index:     make(map[string]int),
		completed: make(map[string]bool),
	}

	for i, t := range m.tutorials {
		m.index[t.ID] = i
	}

	return m
}

// List returns all tutorials with their completion status, in a stable
// order.
func (m *Manager) List() []Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	summaries := make([]Summary, 0, len(m.tutorials))
	for _, t := range m.tutorials {
		summaries = append(summaries, Summary{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Completed:   m.completed[t.ID],
		})
	}

	return summaries
}

// Start begins the tutorial with the given ID at its first step.
func (m *Manager) Start(id string) (StepView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, found := m.index[id]; !found {
		return StepView{}, errors.Wrapf(ErrTutorialNotFound, "id %q", id)
	}

	m.currentID = id
	m.currentStep = 0

	return m.currentView(), nil
}

// Next advances to the next step. When called on the last step it marks
// the tutorial completed and reports done=true, keeping the last step's
// view.
func (m *Manager) Next() (view StepView, done bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentID == "" {
		return StepView{}, false, ErrNoActiveTutorial
	}

	tutorial := m.tutorials[m.index[m.currentID]]
	if m.currentStep >= len(tutorial.Steps)-1 {
		m.completed[m.currentID] = true
		return m.currentView(), true, nil
	}

	m.currentStep++

	return m.currentView(), false, nil
}

// Previous moves back one step.
func (m *Manager) Previous() (StepView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentID == "" {
		return StepView{}, ErrNoActiveTutorial
	}

	if m.currentStep <= 0 {
		return StepView{}, ErrAtFirstStep
	}

	m.currentStep--

	return m.currentView(), nil
}

// Current returns the step the session is on.
func (m *Manager) Current() (StepView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentID == "" {
		return StepView{}, ErrNoActiveTutorial
	}

	return m.currentView(), nil
}

// End terminates the active session and returns its tutorial ID.
func (m *Manager) End() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentID == "" {
		return "", ErrNoActiveTutorial
	}

	id := m.currentID
	m.currentID = ""
	m.currentStep = 0

	return id, nil
}

// VerifyStep reports whether the given operation satisfies the current
// step's expectation. Steps without an expectation accept any operation.
func (m *Manager) VerifyStep(kind mem.OpKind, size, address int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentID == "" {
		return false
	}

	tutorial := m.tutorials[m.index[m.currentID]]
	expected := tutorial.Steps[m.currentStep].Expected

	if expected == nil {
		return true
	}

	if expected.Kind != kind {
		return false
	}

	switch expected.Kind {
	case mem.OpAllocate:
		return expected.Size == nil || *expected.Size == size
	case mem.OpAccess:
		return expected.Address == nil || *expected.Address == address
	default:
		// Deallocate and reset match on kind alone.
		return true
	}
}

// currentView must be called with the lock held and an active session.
func (m *Manager) currentView() StepView {
	tutorial := m.tutorials[m.index[m.currentID]]

	return StepView{
		TutorialID:    tutorial.ID,
		TutorialTitle: tutorial.Title,
		StepIndex:     m.currentStep,
		TotalSteps:    len(tutorial.Steps),
		Step:          tutorial.Steps[m.currentStep],
		IsFirstStep:   m.currentStep == 0,
		IsLastStep:    m.currentStep == len(tutorial.Steps)-1,
	}
}
