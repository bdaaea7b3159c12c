// Package graph provides the network data model and the in-memory graph
// provider consumed by the view engine.
//
// # Architecture
//
// The package sits at the boundary between stored networks and the view:
//
//   - [Document]: Serialization type (JSON files, MongoDB documents)
//   - [Network]: In-memory graph with an active edge set and adjacency index
//   - [Node], [Edge]: Mutable view-facing elements (position, size, color)
//
// Use [FromDocument] to build a Network from a Document.
//
// # Document Format
//
// Networks use a Cytoscape-style elements format. Node and edge payloads live
// under "data"; node positions under "position":
//
//	{
//	  "name": "pathways",
//	  "elements": {
//	    "nodes": [{"data": {"id": "A", "Label": "TP53", "NodeType": "Gene"}, "position": {"x": 0, "y": 0}}],
//	    "edges": [{"data": {"id": "e1", "source": "A", "target": "B", "Is_Tree_Edge": "Tree"}}]
//	  }
//	}
//
// Common operations:
//
//	doc, _ := graph.ReadDocumentFile("network.json")
//	net, report, _ := graph.FromDocument(doc, graph.BuildOptions{Suppressed: isSuppressed})
//
// # Active and Suppressed Edges
//
// Every edge is registered with the Network, but only active edges take part
// in adjacency queries, shortest paths and rendering. Edges classified as
// suppressed at build time start outside the active set; [Network.InsertEdge]
// and [Network.RemoveEdge] move them in and out without destroying them.
// Both operations are idempotent.
//
// # Concurrency
//
// Network is not safe for concurrent use. The view engine mutates it from a
// single event loop.
package graph
