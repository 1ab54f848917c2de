// Package integrationtests runs whole graphs through the app: graph files
// on disk, the core node modules and the frame loop.
package integrationtests
