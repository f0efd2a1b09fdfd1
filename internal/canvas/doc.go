// Package canvas owns the three pixel buffers of an open document and the
// mapping between view space and canvas space.
//
// # Buffer Roles
//
//   - committed: the last agreed-upon raster. It changes only through
//     [State.CommitLive] or when history restores a snapshot.
//   - live: what the user sees. Tools render previews here; it is rebuilt
//     from committed by [State.DiscardLive].
//   - scratch: a transient workspace a tool may fill mid-gesture and later
//     composite into live with [State.CompositeScratchIntoLive].
//
// Buffers handed to the State are either cloned on entry or moved (the
// caller gives up ownership); buffers handed out by [State.Committed] are
// copies. [State.Live] is the one exception: it returns the live surface
// itself so tools can draw into it during a single call.
//
// # Coordinates
//
// Pointer events arrive in view space. [State.ToCanvasCoords] applies the
// current zoom and scroll offset before any tool sees a point.
package canvas
