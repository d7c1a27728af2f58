// Package blocksbm is a Go toolkit for stochastic block model inference by
// Markov chain Monte Carlo over a block-contracted multigraph.
//
// What is blocksbm?
//
//	A thread-safe inference core that brings together:
//
//	  - blockstate: the per-level block assignment, block-contracted
//	    multigraph, and virtual-move entropy/MDL machinery that drives a
//	    single level of inference
//	  - coupling: an arena of uuid-keyed levels linked into arbitrary-depth
//	    hierarchies, so a move at one level propagates into the level above
//	  - overlap: a half-edge layer over blockstate for mixed-membership
//	    block assignment
//	  - bgview: a read-only gonum adapter for inspecting a block-contracted
//	    multigraph's connectivity between sweeps
//
// Under the hood, everything is organized under focused subpackages:
//
//	core/       — the underlying Graph, Vertex, Edge primitives
//	sbmgraph/   — the Graph view blockstate consumes, and its core adapter
//	blockstate/ — block assignment, bg bookkeeping, entropy, sampling
//	mentries/   — batched bg edge-delta entries for coupled propagation
//	coupling/   — multi-level arena linking blockstate levels together
//	overlap/    — half-edge overlapping block state
//	bgview/     — connectivity diagnostics over bg
//	rng/        — the deterministic random source inference sampling draws on
//	examples/   — runnable end-to-end inference scenarios
package blocksbm
