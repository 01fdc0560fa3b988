/*
Package domain contains the core domain models for the sticky transition engine.

It defines the state tree nodes, the path elements handed to an external
transition engine, transition records and the events emitted while a
transition runs. The package is kept free of I/O and persistence concerns.

# Key Entities

  - State: a named node of the state tree with lifecycle hooks, declared
    parameters, view factories and its own view layer.
  - Element: a path entry. Every State owns one canonical Element; surrogate
    Elements stand in for a State during a single transition.
  - Path: the root-first sequence of Elements for a state.
  - TransitionRecord: the bookkeeping for one accepted transition request.
  - Snapshot: a serialisable summary of the active and inactive states.
*/
package domain
