// Package frame holds the per-graph stores that nodes read from and write
// to during an executor pass.
//
// # Purpose
//
// A Context replaces ambient global state with an explicit object owned by
// the executor. It carries two independent stores:
//
//   - Values: socket.ID → cty.Value, the current scalar/text value of every
//     declared socket.
//   - Images: socket.NodeKey → image.Image, the most recent image produced
//     by each node.
//
// # Lifecycle
//
// Entries persist across frames until overwritten. An image entry is read
// by key, not by reference, so a node always sees whatever its upstream
// last wrote; with fan-in a single pass may observe images from different
// frames. Nodes that produce no image leave their previous entry in place.
//
// # Concurrency Model
//
// The stores are not synchronised. The executor runs every node on one
// goroutine and is the only writer during a pass; consumers outside the
// pass (telemetry, snapshots) receive copies.
package frame
