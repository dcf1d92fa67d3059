// Package dag provides a small directed graph used to reason about references
// between service definitions. Nodes are identified by string IDs and edges
// point from a dependency to the node that depends on it.
//
// The compiler only needs two things from it: registering references while
// definitions are completed, and rejecting reference cycles with a readable
// path so the user can see which definitions form the loop.
package dag
