// Package nocmesh is a placement-and-routing optimizer core for 2-D mesh
// Network-on-Chip designs.
//
// 🚀 What is nocmesh?
//
//	A small, composable set of packages that take an upstream cluster
//	graph and a fixed mesh of physical tiles, and anneal two independent
//	codes against it:
//
//	  • A layout code — where each cluster's logical tiles sit on the mesh
//	  • A routing code — how each multicast communication's packets travel
//
// ✨ Design
//
//   - Mutation is reversible — every mutable code (LPC, STC, RPC) carries
//     a single pending mutation, undoable in place
//   - The annealer is generic — anneal.SA[S] anneals any Mutable[S], so
//     layout and routing share one cooling schedule and convergence rule
//   - Deterministic alternatives exist alongside the annealed ones — dle
//     for layout, DYXY for routing — for callers that want a fast,
//     patch-valid answer with no search
//
// Subpackages:
//
//	mesh/            — the W×H physical tile grid and its distance table
//	clustergraph/    — upstream cluster and multicast description
//	lpc/             — LayoutPatternCode: cluster-tile -> physical-tile
//	stc/             — SteinerTreeCode: one multicast's routing tree
//	rpc/             — RoutingPatternCode: one STC per multicast
//	anneal/          — the generic simulated annealer
//	layoutdesigner/  — wires lpc + anneal to the layout objective
//	routingdesigner/ — wires rpc + anneal to the routing objective
//	dle/             — deterministic (non-annealed) layout engines
//	result/          — read-only views of a converged layout/routing
//	config/          — YAML-driven run configuration
//	telemetry/       — Prometheus gauges for a running anneal
//	internal/logx/   — structured logging
package nocmesh
