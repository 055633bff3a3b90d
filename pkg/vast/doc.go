// Package vast reads and validates VAST size-report documents.
//
// # Overview
//
// A VAST document describes a strict tree of named nodes. Each node may
// declare an own byte size and an ordered list of children:
//
//	{
//	  "format": "vast",
//	  "version": "1.0.0",
//	  "vast": {
//	    "name": "app",
//	    "size": 100,
//	    "children": [
//	      {"name": "main.o", "type": "object", "size": 30},
//	      {"name": "libz.a", "type": "archive", "size": 20}
//	    ]
//	  }
//	}
//
// A node's size is meant to be its total footprint, inclusive of children.
// A missing or zero size means "derive from children"; see package
// reconcile for how the two views are combined.
//
// # Reading
//
// Use [ImportFile] to read a document from disk (JSON, or TOML when the file
// ends in .toml), or [ReadJSON] / [ReadTOML] to read from any io.Reader.
// Unreadable files fail with code IO_ERROR, undecodable content with
// PARSE_ERROR.
//
// # Validation
//
// [Validate] must pass before any further processing. It checks the declared
// kind and schema version (exact string match) and then the node tree itself:
// no negative sizes and no node reachable from more than one parent.
package vast
