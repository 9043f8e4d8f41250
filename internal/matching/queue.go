package matching

import (
	"errors"
	"sync"
)

var (
	ErrNotQueued       = errors.New("user is not in the candidate queue")
	ErrAlreadyPaired   = errors.New("candidate already has a partner")
	ErrAlreadyClaiming = errors.New("candidate is mid-claim")
)

// Candidate is one user actively seeking a call partner.
type Candidate struct {
	UserID     string
	PairedWith string // mutual: if A pairs B then B pairs A
	Claiming   bool   // held while an attempt is evaluating the pool
}

// CandidateQueue is the in-memory set of active seekers. All mutation goes
// through its methods under a single mutex; ClaimPair re-validates both
// entries inside the same critical section that writes the mutual
// pointers, so a snapshot gone stale between ranking and claiming can
// never produce a double booking.
type CandidateQueue struct {
	mu      sync.Mutex
	entries map[string]*Candidate
}

func NewCandidateQueue() *CandidateQueue {
	return &CandidateQueue{entries: make(map[string]*Candidate)}
}

// Add inserts a fresh entry for userID. added is false when the user is
// already queued; wasEmpty reports whether the queue had no entries before
// the insert.
func (q *CandidateQueue) Add(userID string) (added, wasEmpty bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.entries[userID]; ok {
		return false, false
	}
	wasEmpty = len(q.entries) == 0
	q.entries[userID] = &Candidate{UserID: userID}
	return true, wasEmpty
}

// Get returns a copy of the entry for userID.
func (q *CandidateQueue) Get(userID string) (Candidate, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entries[userID]
	if !ok {
		return Candidate{}, false
	}
	return *e, true
}

// RemoveIfSeeking deletes userID's entry only while it is still an
// unpaired, unclaimed seeker, re-checked in the same critical section as
// the delete. An unconditional removal here could race a concurrent
// ClaimPair that legally landed on this entry after its last EndClaim,
// stranding the new partner with a dangling pointer. paired reports that
// the entry survived because it now holds a partner.
func (q *CandidateQueue) RemoveIfSeeking(userID string) (removed, paired bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entries[userID]
	if !ok {
		return false, false
	}
	if e.PairedWith != "" {
		return false, true
	}
	if e.Claiming {
		return false, false
	}
	delete(q.entries, userID)
	return true, false
}

// BeginClaim marks the requester as mid-evaluation so no concurrent
// attempt sees it as a fresh candidate. It fails when the entry is gone,
// already paired, or already mid-claim.
func (q *CandidateQueue) BeginClaim(userID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entries[userID]
	if !ok {
		return ErrNotQueued
	}
	if e.PairedWith != "" {
		return ErrAlreadyPaired
	}
	if e.Claiming {
		return ErrAlreadyClaiming
	}
	e.Claiming = true
	return nil
}

// EndClaim clears the requester's claim mark. Safe to call after the entry
// has been removed.
func (q *CandidateQueue) EndClaim(userID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if e, ok := q.entries[userID]; ok {
		e.Claiming = false
	}
}

// Seeking returns the ids of every entry other than exclude that has no
// partner and is not mid-claim, taken from one consistent snapshot.
func (q *CandidateQueue) Seeking(exclude string) []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	ids := make([]string, 0, len(q.entries))
	for id, e := range q.entries {
		if id == exclude || e.PairedWith != "" || e.Claiming {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// ClaimPair atomically pairs requester and candidate. Both entries are
// re-validated immediately before the mutual write; the snapshot the
// caller ranked from may be stale relative to claims made by other
// attempts. The requester's claim mark is cleared on success.
func (q *CandidateQueue) ClaimPair(requester, candidate string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	r, ok := q.entries[requester]
	if !ok {
		return ErrNotQueued
	}
	c, ok := q.entries[candidate]
	if !ok {
		return ErrNotQueued
	}
	if r.PairedWith != "" || c.PairedWith != "" {
		return ErrAlreadyPaired
	}
	if c.Claiming {
		return ErrAlreadyClaiming
	}
	r.PairedWith = candidate
	c.PairedWith = requester
	r.Claiming = false
	c.Claiming = false
	return nil
}

// ReleasePair removes userID's entry and, when paired, the partner's entry
// too, so a left or ended call frees both participants together. The
// partner id is returned so callers can notify both sides.
func (q *CandidateQueue) ReleasePair(userID string) (partner string, removed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entries[userID]
	if !ok {
		return "", false
	}
	delete(q.entries, userID)
	if e.PairedWith != "" {
		partner = e.PairedWith
		delete(q.entries, partner)
	}
	return partner, true
}

// Partner returns userID's current partner, if any.
func (q *CandidateQueue) Partner(userID string) (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entries[userID]
	if !ok || e.PairedWith == "" {
		return "", false
	}
	return e.PairedWith, true
}

// Len reports the number of queued candidates.
func (q *CandidateQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
