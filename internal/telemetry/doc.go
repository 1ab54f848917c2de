// Package telemetry streams frame reports over socket.io.
//
// Server is an executor.Observer that broadcasts every frame report as a
// "frame" event to all connected clients. Watch is the matching client used
// by `nodegrid watch`.
package telemetry
