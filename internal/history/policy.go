package history

import "github.com/oklog/ulid/v2"

// maybeCheckpoint stores a copy of committed on the newest entry once
// CheckpointInterval operations have been added since the last snapshot or
// checkpoint. A floating selection postpones it: its content is not part of
// committed, so restoring from such a checkpoint would lose it.
func (h *History) maybeCheckpoint(env Env) {
	n := h.opts.CheckpointInterval
	if n <= 0 || h.sinceRestorePoint() < n || env.SelectionActive() {
		return
	}
	h.undo[len(h.undo)-1].checkpoint = env.Committed()
	h.logger.Debug("checkpoint taken", "at", len(h.undo)-1)

	if h.opts.MaxCheckpoints <= 0 {
		return
	}
	excess := h.Checkpoints() - h.opts.MaxCheckpoints
	for i := 0; i < len(h.undo) && excess > 0; i++ {
		if h.undo[i].checkpoint != nil {
			h.undo[i].checkpoint = nil
			excess--
			h.logger.Debug("checkpoint evicted", "at", i)
		}
	}
}

// sinceRestorePoint counts the entries after the newest snapshot or
// checkpoint.
func (h *History) sinceRestorePoint() int {
	n := 0
	for i := len(h.undo) - 1; i >= 0; i-- {
		if h.undo[i].op.IsSnapshot() || h.undo[i].checkpoint != nil {
			break
		}
		n++
	}
	return n
}

// Checkpoints returns how many entries on the undo stack carry one.
func (h *History) Checkpoints() int {
	n := 0
	for _, e := range h.undo {
		if e.checkpoint != nil {
			n++
		}
	}
	return n
}

// prune keeps the newest MaxSnapshots snapshot operations. The oldest of
// them becomes the base and everything up to it leaves the undo stack.
func (h *History) prune() {
	limit := h.opts.MaxSnapshots
	if limit <= 0 {
		return
	}
	var idx []int
	for i, e := range h.undo {
		if e.op.IsSnapshot() {
			idx = append(idx, i)
		}
	}
	if len(idx) <= limit {
		return
	}

	cut := idx[len(idx)-limit]
	h.base = h.undo[cut].op
	if h.saved.valid && h.saved.id == h.base.ID {
		h.saved.id = ulid.ULID{}
	}
	h.undo = append([]entry(nil), h.undo[cut+1:]...)
	h.logger.Debug("snapshots pruned", "dropped", cut+1, "kept", len(h.undo))
}
