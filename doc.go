// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

/*
Package mdd defines a concrete type for Multi-Valued Decision Diagrams (MDD),
a layered, labeled, directed acyclic graph used to represent a table of rows
over a fixed set of dimensions. Each root-to-terminal path in the diagram
corresponds to one or more input rows after numeric binning, and duplicate
sub-languages are merged so the diagram is typically far smaller than the
table it was built from.

Basics

A diagram has a fixed set of dimensions, declared through a Schema and
compiled in an order chosen by the ordering engine (see Fixed, Heuristic and
Search). Building a diagram is a single call to Builder.Fit over a row
iterator; the resulting *MDD is read-only from then on. Two compilation
strategies are available: build the full prefix trie and reduce it bottom-up
(the default), or build the reduced form incrementally using a per-layer
signature index (the "slice" method, after Nicholson, Bridge and Wilson,
2006).

Queries

Once built, an *MDD answers five kinds of queries: Exists (exact
membership), Count (pattern cardinality), Match (pattern enumeration),
Complete (probability-ranked completion by beam search) and Nearest
(distance-ranked nearest neighbours by A*). All queries accept a partial
pattern where unconstrained dimensions act as wildcards.

Scope

This package implements only the compiler and query engine. Reading tabular
data into row iterators, rendering diagrams for visualization, persistence
and CLI wiring are the responsibility of external collaborators; this
package exposes a read-only traversal interface (MDD.Nodes, MDD.Size) for
them to consume.
*/
package mdd
