// Package graphfile reads and writes node graphs as HCL documents.
//
// A graph file holds the shared processing configuration, the node
// instances with their positions and settings, and the links between their
// sockets:
//
//	process {
//	  width            = 320
//	  height           = 240
//	  use_perf_counter = true
//	}
//
//	node "Threshold" {
//	  id       = 1
//	  pos      = [300, 60]
//	  settings = {
//	    threshold = 90
//	    type      = "THRESH_OTSU"
//	  }
//	}
//
//	link {
//	  from = "0:ImageFile:IMAGE:Output02"
//	  to   = "1:Threshold:IMAGE:Input01"
//	}
//
// Settings are keyed by the local socket names each node type declares.
// A graph may be split across several files; Load merges them.
package graphfile
