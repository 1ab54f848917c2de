// Package connection maintains the directed edges between node sockets.
//
// The Registry knows every declared socket and every established
// connection. It enforces the type-safety contract at creation time: kinds
// must match, the source must be an Output or Static socket, the
// destination must be an Input socket, and a destination accepts at most
// one incoming connection. A source may fan out to any number of
// destinations.
//
// The registry does not decide when the graph updates; it only answers
// lookups for the executor.
package connection
