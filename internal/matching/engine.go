package matching

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

// Defaults for the engine knobs; overridable through config.
const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 10 * time.Second
)

// ProfileDirectory is the read side of the profile/criteria collaborator.
// Both lookups are batched. Implementations live outside this package.
type ProfileDirectory interface {
	Profiles(ctx context.Context, userIDs []string) (map[string]Profile, error)
	CriteriaFor(ctx context.Context, userIDs []string) (map[string]Criteria, error)
}

// Notifier delivers outbound matchmaking events to every live connection
// of a user. Delivery to a user with no connections is a silent no-op:
// presence may have dropped between decision and delivery.
type Notifier interface {
	QueueEmpty(userID string)
	MatchFound(userID string, self, partner Profile)
	CallTimeout(userID string)
	CallEnded(userID, partnerID, reason string)
}

// EventRecorder receives call-lifecycle records for external persistence.
// Recording failures never affect matchmaking.
type EventRecorder interface {
	RecordMatch(userID, partnerID string, score int)
	RecordTimeout(userID string)
	RecordCallEnd(userID, partnerID, reason string)
}

// EngineConfig holds the matchmaking knobs. Zero values fall back to the
// package defaults.
type EngineConfig struct {
	MaxAttempts   int
	RetryDelay    time.Duration
	PassThreshold int
}

// Engine runs the bounded-retry search over the candidate queue. It holds
// no state of its own beyond its collaborators; every RequestMatch call
// runs on the caller's goroutine and synchronizes through the queue.
type Engine struct {
	queue     *CandidateQueue
	table     *CompatibilityTable
	directory ProfileDirectory
	notifier  Notifier
	recorder  EventRecorder
	cfg       EngineConfig
	log       *slog.Logger
}

func NewEngine(
	queue *CandidateQueue,
	table *CompatibilityTable,
	directory ProfileDirectory,
	notifier Notifier,
	recorder EventRecorder,
	cfg EngineConfig,
	log *slog.Logger,
) *Engine {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.PassThreshold <= 0 {
		cfg.PassThreshold = DefaultPassThreshold
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		queue:     queue,
		table:     table,
		directory: directory,
		notifier:  notifier,
		recorder:  recorder,
		cfg:       cfg,
		log:       log,
	}
}

// RequestMatch enqueues userID and searches for a partner, retrying up to
// MaxAttempts with a fixed delay between attempts. The delay throttles
// retry pressure on the profile collaborator and gives other seekers time
// to enter the pool. It blocks until matched, stopped, or exhausted, so it
// is normally run on its own goroutine per request.
func (e *Engine) RequestMatch(ctx context.Context, userID string) {
	added, wasEmpty := e.queue.Add(userID)
	if !added {
		// Already seeking; the original request's loop keeps running.
		return
	}
	if wasEmpty {
		// Informational only: the search still runs its full course.
		e.notifier.QueueEmpty(userID)
	}

	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		matched, stop := e.attempt(ctx, userID, attempt)
		if matched || stop {
			return
		}
		if attempt < e.cfg.MaxAttempts {
			select {
			case <-time.After(e.cfg.RetryDelay):
			case <-ctx.Done():
				return
			}
		}
	}

	// Exhausted retries: a normal, user-visible outcome, not an error.
	e.timeoutSeeker(userID)
}

// timeoutSeeker finalizes an exhausted search. Between the final
// attempt's EndClaim and this point the requester is visible as a fresh
// candidate, so another seeker's ClaimPair may have landed; the removal
// re-checks state under the queue lock, and a paired entry means the
// match stands and no timeout is reported.
func (e *Engine) timeoutSeeker(userID string) {
	removed, paired := e.queue.RemoveIfSeeking(userID)
	if paired {
		e.log.Debug("timeout skipped, seeker was claimed", "user", userID)
		return
	}
	if !removed {
		return
	}
	e.log.Info("matchmaking timed out", "user", userID, "attempts", e.cfg.MaxAttempts)
	e.notifier.CallTimeout(userID)
	if e.recorder != nil {
		e.recorder.RecordTimeout(userID)
	}
}

// attempt runs one pass: snapshot the pool, fetch profile data, rank the
// eligible candidates, and walk the ranking until a claim lands. stop is
// true when the requester's entry is gone (disconnect or explicit leave)
// or another path already completed the match.
func (e *Engine) attempt(ctx context.Context, userID string, attempt int) (matched, stop bool) {
	if err := e.queue.BeginClaim(userID); err != nil {
		e.log.Debug("attempt aborted", "user", userID, "attempt", attempt, "reason", err)
		return false, true
	}

	pool := e.queue.Seeking(userID)
	if len(pool) == 0 {
		e.queue.EndClaim(userID)
		return false, false
	}

	ids := append(append(make([]string, 0, len(pool)+1), pool...), userID)
	profiles, err := e.directory.Profiles(ctx, ids)
	var criteria map[string]Criteria
	if err == nil {
		criteria, err = e.directory.CriteriaFor(ctx, ids)
	}
	if err != nil {
		// Transient fetch failure: abort only this attempt.
		e.log.Warn("profile fetch failed", "user", userID, "attempt", attempt, "error", err)
		e.queue.EndClaim(userID)
		return false, false
	}

	me, haveProfile := profiles[userID]
	myCriteria, haveCriteria := criteria[userID]
	if !haveProfile || !haveCriteria {
		e.log.Warn("requester has no dating record", "user", userID)
		e.queue.EndClaim(userID)
		return false, false
	}

	type scored struct {
		id    string
		total int
	}
	ranked := make([]scored, 0, len(pool))
	for _, id := range pool {
		p, ok := profiles[id]
		if !ok {
			continue
		}
		c, ok := criteria[id]
		if !ok {
			continue
		}
		userScore := CriteriaScore(p, myCriteria)
		myScore := CriteriaScore(me, c)
		if userScore < e.cfg.PassThreshold || myScore < e.cfg.PassThreshold {
			continue
		}
		total := userScore + myScore
		if bonus, ok := e.table.Score(me.PersonalityType, p.PersonalityType); ok {
			total += bonus
		}
		ranked = append(ranked, scored{id: id, total: total})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].total > ranked[j].total })

	for _, cand := range ranked {
		// The snapshot may be stale: the candidate can have been claimed
		// or removed while we were fetching. ClaimPair re-checks both
		// entries before writing the mutual pointers.
		if err := e.queue.ClaimPair(userID, cand.id); err != nil {
			continue
		}
		e.log.Info("match claimed", "user", userID, "partner", cand.id, "score", cand.total, "attempt", attempt)
		e.notifier.MatchFound(userID, me, profiles[cand.id])
		e.notifier.MatchFound(cand.id, profiles[cand.id], me)
		if e.recorder != nil {
			e.recorder.RecordMatch(userID, cand.id, cand.total)
		}
		return true, false
	}

	e.queue.EndClaim(userID)
	return false, false
}

// ReleasePair removes userID's queue entry and, when paired, the partner's
// entry, then notifies both sides. A partial release would leave the
// partner as a dangling, unmatchable entry, so both always go together.
func (e *Engine) ReleasePair(userID, reason string) {
	partner, removed := e.queue.ReleasePair(userID)
	if !removed {
		return
	}
	if partner == "" {
		e.log.Debug("seeker released", "user", userID, "reason", reason)
		return
	}
	e.log.Info("pair released", "user", userID, "partner", partner, "reason", reason)
	e.notifier.CallEnded(userID, partner, reason)
	e.notifier.CallEnded(partner, userID, reason)
	if e.recorder != nil {
		e.recorder.RecordCallEnd(userID, partner, reason)
	}
}

// PartnerOf reports the current call partner of userID, if any.
func (e *Engine) PartnerOf(userID string) (string, bool) {
	return e.queue.Partner(userID)
}
