/*
Package socket provides the typed terminals that nodes expose to the graph.

A socket is identified by the composite key ID{NodeID, NodeType, Kind, Role,
Index}. IDs are plain comparable structs and are used directly as map keys;
the canonical string form

	<node_id>:<node_type>:<KIND>:<Role><NN>

e.g. `2:Threshold:INT:Input03`, exists only for graph files, setting
records and logs. Parse and ID.String round-trip.
*/
package socket
