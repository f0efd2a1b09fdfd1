// Package history records committed edits and rebuilds the canvas from them.
//
// # Model
//
// The undo stack holds operations in replay order. Replaying it from the most
// recent snapshot (or from the document's initial snapshot) reproduces the
// committed buffer exactly. Edits are stored as replayable intents rather
// than pixel diffs, so memory grows with the number of gestures, and replay
// cost is bounded by two kinds of full rasters:
//
//   - Snapshot operations, added by [History.AddSnapshot] after a save and by
//     [History.Flatten]. They are visible entries: undo pops them.
//   - Checkpoints, taken every CheckpointInterval operations while no
//     selection is active. They ride on the entry they follow, so undo never
//     pops an invisible record.
//
// [History.RebuildFromHistory] restores from the newest of either and replays
// only what came after it.
//
// # Environment
//
// History holds no reference to the document. Every method that touches
// canvas state receives an [Env] for the duration of the call.
//
// # Snapshot Pruning
//
// When more than MaxSnapshots snapshot operations accumulate, everything
// before the oldest retained snapshot is discarded and that snapshot becomes
// the new base. Undo cannot go past the base.
package history
