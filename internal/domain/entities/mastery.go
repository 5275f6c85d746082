package entities

import "sort"

// MasteryThreshold is the number of consecutive correct answers that takes an
// item out of focus.
const MasteryThreshold = 3

// FocusSet holds the ids of items the learner recently missed.
type FocusSet map[string]struct{}

// NewFocusSet builds a set from ids.
func NewFocusSet(ids ...string) FocusSet {
	fs := make(FocusSet, len(ids))
	for _, id := range ids {
		fs[id] = struct{}{}
	}
	return fs
}

func (fs FocusSet) Contains(id string) bool {
	_, ok := fs[id]
	return ok
}

func (fs FocusSet) Add(id string) {
	fs[id] = struct{}{}
}

func (fs FocusSet) Remove(id string) {
	delete(fs, id)
}

// IDs returns the members in sorted order.
func (fs FocusSet) IDs() []string {
	ids := make([]string, 0, len(fs))
	for id := range fs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy.
func (fs FocusSet) Clone() FocusSet {
	out := make(FocusSet, len(fs))
	for id := range fs {
		out[id] = struct{}{}
	}
	return out
}

// Restrict drops ids that are not part of bank.
func (fs FocusSet) Restrict(bank *ItemBank) FocusSet {
	out := make(FocusSet, len(fs))
	for id := range fs {
		if bank.Contains(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// MasteryCounters maps item id to consecutive correct answers since the item
// last entered focus. Values stay within [0, MasteryThreshold).
type MasteryCounters map[string]int

// Clone returns an independent copy.
func (mc MasteryCounters) Clone() MasteryCounters {
	out := make(MasteryCounters, len(mc))
	for id, n := range mc {
		out[id] = n
	}
	return out
}

// Get returns the counter for id clamped into [0, MasteryThreshold].
func (mc MasteryCounters) Get(id string) int {
	return clampCounter(mc[id])
}

func clampCounter(n int) int {
	if n < 0 {
		return 0
	}
	if n > MasteryThreshold {
		return MasteryThreshold
	}
	return n
}

// MasteryChange describes what an answer did to the focus state.
type MasteryChange struct {
	AddedToFocus    bool // item entered focus
	Mastered        bool // item reached the threshold and left focus
	FocusChanged    bool
	CountersChanged bool
}

// ApplyAnswer updates focus and counters for an answered item.
//
// Correct answers on a focus item increment its counter; reaching
// MasteryThreshold removes the item from focus and resets the counter.
// Incorrect answers on an item outside focus add it with a zeroed counter.
// An incorrect answer on an item already in focus only zeroes its counter.
func ApplyAnswer(focus FocusSet, counters MasteryCounters, itemID string, correct bool) MasteryChange {
	var ch MasteryChange

	if correct {
		if !focus.Contains(itemID) {
			return ch
		}

		next := counters.Get(itemID) + 1
		if next >= MasteryThreshold {
			focus.Remove(itemID)
			counters[itemID] = 0
			ch.Mastered = true
			ch.FocusChanged = true
		} else {
			counters[itemID] = next
		}
		ch.CountersChanged = true
		return ch
	}

	if !focus.Contains(itemID) {
		focus.Add(itemID)
		ch.AddedToFocus = true
		ch.FocusChanged = true
	}
	if prev, ok := counters[itemID]; !ok || prev != 0 {
		ch.CountersChanged = true
	}
	counters[itemID] = 0

	return ch
}
