// Package executor owns a node graph and runs it one frame at a time.
//
// The Executor is the only owner of the graph's frame context, socket
// registry and dependency graph. A frame is a single synchronous pass: each
// node is updated once, after every node that feeds it, and the images it
// returns are written to the image store for the nodes that follow. A node
// that fails is logged and recorded in the frame report; the pass carries on
// with the remaining nodes and nothing is retried or rolled back.
//
// An Executor is not safe for concurrent use.
package executor
