// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package coverage

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

// ErrTopicNotFound reports a transition target absent from the agenda.
var ErrTopicNotFound = errors.New("topic not found")

// ErrNoAudit reports topic generation without a prior audit.
var ErrNoAudit = errors.New("no audit on record")

// ErrNoOpenSession reports an end-session with nothing open.
var ErrNoOpenSession = errors.New("no open session")

// ErrSessionOpen reports a start-session while one is already open.
var ErrSessionOpen = errors.New("a session is already open")

// topicsPerGap caps how many topics one gap may enqueue (R4.2).
const topicsPerGap = 3

// validTransitions is the topic lifecycle: queued -> researching ->
// completed or blocked (R4.1).
var validTransitions = map[types.TopicStatus][]types.TopicStatus{
	types.TopicQueued:      {types.TopicResearching},
	types.TopicResearching: {types.TopicCompleted, types.TopicBlocked},
	types.TopicBlocked:     {types.TopicQueued},
}

// Agenda returns the cached agenda, or ok=false when none exists yet.
func (a *Auditor) Agenda() (*types.ResearchAgenda, bool) {
	agenda, _, ok := a.cache.Load()
	return agenda, ok
}

// GenerateTopics turns the last audit's gaps into queued research
// topics, at most topicsPerGap per gap, deduplicated by name against
// every non-blocked topic already on the agenda (R4.2-R4.3). It
// returns how many topics were enqueued.
func (a *Auditor) GenerateTopics() (int, error) {
	agenda, _, ok := a.cache.Load()
	if !ok || agenda.LastAudit == nil {
		return 0, ErrNoAudit
	}

	taken := map[string]bool{}
	for _, t := range agenda.Topics {
		// Blocked topics do not reserve their name; the gap that
		// produced them is still open and may re-enqueue.
		if t.Status != types.TopicBlocked {
			taken[t.Name] = true
		}
	}

	now := a.now()
	added := 0
	for _, gap := range agenda.LastAudit.Gaps {
		enqueued := 0
		for _, name := range gap.SuggestedTopics {
			if enqueued >= topicsPerGap {
				break
			}
			if taken[name] {
				continue
			}
			agenda.Topics = append(agenda.Topics, types.ResearchTopic{
				Name:     name,
				Category: gap.Category,
				Priority: gap.Priority,
				Depth:    depthForGap(gap.Type),
				Status:   types.TopicQueued,
				QueuedAt: now,
			})
			taken[name] = true
			enqueued++
			added++
		}
	}

	if added > 0 {
		agenda.LastUpdated = now
		if err := a.cache.Store(agenda, now); err != nil {
			return 0, fmt.Errorf("storing agenda: %w", err)
		}
	}
	return added, nil
}

// depthForGap hints how thoroughly to research a topic. A missing or
// stale category wants breadth first; a shallow one wants more of the
// same; absent subtopics want depth.
func depthForGap(t types.GapType) types.Depth {
	switch t {
	case types.GapShallow:
		return types.DepthIntermediate
	case types.GapSubtopics:
		return types.DepthDeep
	}
	return types.DepthOverview
}

// NextTopics returns up to n queued topics, most urgent first. Ties
// within a priority keep queue order (R4.5).
func (a *Auditor) NextTopics(n int) ([]types.ResearchTopic, error) {
	agenda, _, ok := a.cache.Load()
	if !ok {
		return nil, nil
	}

	var queued []types.ResearchTopic
	for _, t := range agenda.Topics {
		if t.Status == types.TopicQueued {
			queued = append(queued, t)
		}
	}
	sort.SliceStable(queued, func(i, j int) bool {
		ri, rj := types.PriorityRank(queued[i].Priority), types.PriorityRank(queued[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return queued[i].QueuedAt.Before(queued[j].QueuedAt)
	})
	if n >= 0 && len(queued) > n {
		queued = queued[:n]
	}
	return queued, nil
}

// Transition moves a topic through its lifecycle. An unknown topic is
// ErrTopicNotFound; a jump outside the lifecycle is an error naming
// both states (R4.1).
func (a *Auditor) Transition(name string, to types.TopicStatus) error {
	agenda, _, ok := a.cache.Load()
	if !ok {
		return fmt.Errorf("%w: %s", ErrTopicNotFound, name)
	}

	for i := range agenda.Topics {
		t := &agenda.Topics[i]
		if t.Name != name {
			continue
		}
		if !transitionAllowed(t.Status, to) {
			return fmt.Errorf("topic %q: cannot move %s -> %s", name, t.Status, to)
		}
		t.Status = to
		now := a.now()
		if to == types.TopicCompleted {
			t.CompletedAt = now
		}
		agenda.LastUpdated = now
		if err := a.cache.Store(agenda, now); err != nil {
			return fmt.Errorf("storing agenda: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrTopicNotFound, name)
}

func transitionAllowed(from, to types.TopicStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StartSession opens a research session. Only one session may be open
// at a time (R5.1).
func (a *Auditor) StartSession() (*types.ResearchSession, error) {
	agenda, _, ok := a.cache.Load()
	if !ok {
		agenda = &types.ResearchAgenda{}
	}
	if open := openSession(agenda); open != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionOpen, open.ID)
	}

	now := a.now()
	session := types.ResearchSession{
		ID:        uuid.NewString(),
		StartedAt: now,
	}
	agenda.Sessions = append(agenda.Sessions, session)
	agenda.LastUpdated = now
	if err := a.cache.Store(agenda, now); err != nil {
		return nil, fmt.Errorf("storing agenda: %w", err)
	}
	return &session, nil
}

// EndSession closes the open session, records what it produced, and
// folds the session into the running averages (R5.2-R5.3).
func (a *Auditor) EndSession(topics, filesCreated, sourcesUsed []string) (*types.ResearchSession, error) {
	agenda, _, ok := a.cache.Load()
	if !ok {
		return nil, ErrNoOpenSession
	}
	open := openSession(agenda)
	if open == nil {
		return nil, ErrNoOpenSession
	}

	now := a.now()
	open.EndedAt = now
	open.Topics = append([]string(nil), topics...)
	open.FilesCreated = append([]string(nil), filesCreated...)
	open.SourcesUsed = append([]string(nil), sourcesUsed...)

	s := &agenda.Stats
	n := float64(s.SessionsCompleted + 1)
	s.AvgTopicsPerSession = (s.AvgTopicsPerSession*float64(s.SessionsCompleted) + float64(len(topics))) / n
	s.AvgFilesPerSession = (s.AvgFilesPerSession*float64(s.SessionsCompleted) + float64(len(filesCreated))) / n
	s.SessionsCompleted++

	agenda.LastUpdated = now
	if err := a.cache.Store(agenda, now); err != nil {
		return nil, fmt.Errorf("storing agenda: %w", err)
	}
	done := *open
	return &done, nil
}

func openSession(agenda *types.ResearchAgenda) *types.ResearchSession {
	for i := range agenda.Sessions {
		if agenda.Sessions[i].EndedAt.IsZero() {
			return &agenda.Sessions[i]
		}
	}
	return nil
}
