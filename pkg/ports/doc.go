/*
Package ports defines the driven ports (interfaces) of the sticky engine.

These interfaces decouple the planning core from the collaborators it steers,
so that any hierarchical transition engine and any snapshot backend can be
plugged in.

# Key Interfaces

  - TransitionEngine: walks a from-path and a to-path, firing exit and enter
    hooks. It calls a PlanHook before walking so the planner can substitute
    the paths it is handed.
  - SnapshotStore: persists registry snapshots (e.g. in memory or Redis).
*/
package ports
