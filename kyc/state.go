package kyc

import (
	"context"
	"slices"
	"sync"

	"github.com/jrsteele09/go-kyc-client/internal/watch"
)

// State is a snapshot of the user's KYC view.
type State struct {
	Submissions       []Document
	CurrentSubmission *Document
	CurrentStatus     *Status
	Loading           bool
	Submitting        bool
	Error             string
}

// HasSubmissions reports whether any documents have been loaded.
func (s State) HasSubmissions() bool {
	return len(s.Submissions) > 0
}

// OverallStatus returns the loaded overall status, or OverallIncomplete.
func (s State) OverallStatus() string {
	if s.CurrentStatus == nil || s.CurrentStatus.OverallStatus == "" {
		return OverallIncomplete
	}
	return s.CurrentStatus.OverallStatus
}

func (s State) clone() State {
	s.Submissions = slices.Clone(s.Submissions)
	for i := range s.Submissions {
		s.Submissions[i] = s.Submissions[i].clone()
	}
	if s.CurrentSubmission != nil {
		d := s.CurrentSubmission.clone()
		s.CurrentSubmission = &d
	}
	s.CurrentStatus = s.CurrentStatus.clone()
	return s
}

func (d Document) clone() Document {
	d.Findings = slices.Clone(d.Findings)
	if d.ConfidenceScore != nil {
		score := *d.ConfidenceScore
		d.ConfidenceScore = &score
	}
	return d
}

func (st *Status) clone() *Status {
	if st == nil {
		return nil
	}
	c := *st
	c.Findings = slices.Clone(st.Findings)
	return &c
}

// Store holds the live KYC state. Like the session store, every mutator replaces the whole
// record under the lock.
type Store struct {
	mu       sync.RWMutex
	state    State
	watchers *watch.Broadcaster[State]
}

func NewStore() *Store {
	return &Store{watchers: watch.New[State]()}
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Watch delivers the current state and then the latest state after each change until ctx ends.
func (s *Store) Watch(ctx context.Context) <-chan State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watchers.Subscribe(ctx, s.state.clone())
}

func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	fn(&next)
	s.state = next
	s.watchers.Publish(next.clone())
}

func (s *Store) SetLoading(loading bool) {
	s.update(func(st *State) { st.Loading = loading })
}

func (s *Store) SetSubmitting(submitting bool) {
	s.update(func(st *State) { st.Submitting = submitting })
}

func (s *Store) SetError(msg string) {
	s.update(func(st *State) { st.Error = msg })
}

// SetSubmissions replaces the document list and ends loading.
func (s *Store) SetSubmissions(submissions []Document) {
	s.update(func(st *State) {
		st.Submissions = State{Submissions: submissions}.clone().Submissions
		st.Loading = false
		st.Error = ""
	})
}

// SetCurrentSubmission selects a document; nil clears the selection.
func (s *Store) SetCurrentSubmission(submission *Document) {
	s.update(func(st *State) {
		st.CurrentSubmission = nil
		if submission != nil {
			d := submission.clone()
			st.CurrentSubmission = &d
		}
		st.Loading = false
		st.Error = ""
	})
}

func (s *Store) ClearCurrentSubmission() {
	s.SetCurrentSubmission(nil)
}

// SetCurrentStatus records the loaded status and ends loading.
func (s *Store) SetCurrentStatus(status *Status) {
	s.update(func(st *State) {
		st.CurrentStatus = status.clone()
		st.Loading = false
		st.Error = ""
	})
}

// SubmitSuccess ends a submission, adopting the status the backend returned with it.
func (s *Store) SubmitSuccess(response *SubmissionResponse) {
	s.update(func(st *State) {
		if response != nil {
			st.CurrentStatus = response.KycStatus.clone()
		}
		st.Submitting = false
		st.Error = ""
	})
}

func (s *Store) SubmitFailure(msg string) {
	s.update(func(st *State) {
		st.Submitting = false
		st.Error = msg
	})
}

// UpdateSubmission replaces the document with the same ID in the list and, if selected,
// the current submission.
func (s *Store) UpdateSubmission(submission Document) {
	s.update(func(st *State) {
		for i := range st.Submissions {
			if st.Submissions[i].ID == submission.ID {
				st.Submissions[i] = submission.clone()
			}
		}
		if st.CurrentSubmission != nil && st.CurrentSubmission.ID == submission.ID {
			d := submission.clone()
			st.CurrentSubmission = &d
		}
		st.Loading = false
		st.Error = ""
	})
}

// LoadFailure ends a load with an error.
func (s *Store) LoadFailure(msg string) {
	s.update(func(st *State) {
		st.Loading = false
		st.Error = msg
	})
}

// Reset returns to the empty state, used when the session ends.
func (s *Store) Reset() {
	s.update(func(st *State) { *st = State{} })
}
