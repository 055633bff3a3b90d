// Package pkg provides the libraries behind vastmap.
//
// # Overview
//
// vastmap turns VAST size reports (trees of named nodes with optional sizes)
// into TMAP documents (the treemap rectangle of every node). The pkg
// directory is organized as:
//
//  1. [vast] - VAST document types, decoding and validation
//  2. [reconcile] - size reconciliation (per-node layout weights)
//  3. [treemap] - weighted hierarchy and the squarified layout engine
//  4. [tmap] - TMAP serialization
//  5. [pipeline] - orchestration (validate → reconcile → layout → serialize)
//  6. [render] - SVG rendering of TMAP documents
//  7. [store] - document persistence (file, Redis)
//
// # Architecture
//
//	vast.json
//	    ↓
//	[vast] package (decode + validate)
//	    ↓
//	[reconcile] package (weights keyed by node)
//	    ↓
//	[treemap] package (rectangles)
//	    ↓
//	[tmap] package (JSON document)
//
// # Quick Start
//
//	doc, err := vast.ImportFile("vast.json")
//	if err != nil {
//	    return err
//	}
//	if err := vast.Validate(doc); err != nil {
//	    return err
//	}
//	weights := reconcile.Reconcile(doc.Root)
//	engine := treemap.Squarify{Width: 940, Height: 450}
//	root, err := engine.Layout(ctx, doc.Root, pipeline.AggregateWeight(weights))
//	if err != nil {
//	    return err
//	}
//	out := tmap.Wrap(tmap.Serialize(root), "vast.json", time.Now())
//
// Most callers use [pipeline.Runner] instead, which runs the same stages
// with logging, statistics and observability hooks.
//
// # Supporting Packages
//
// [errors] - structured errors with machine-readable codes.
//
// [observability] - hook interfaces for metrics and tracing.
//
// [buildinfo] - version information set at build time.
package pkg
