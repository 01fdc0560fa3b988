/*
Package sticky adds sticky states to a hierarchical state machine.

A sticky state is not torn down when the user navigates away from it. It is
inactivated instead: its hooks see OnInactivate rather than OnExit, its
resolved view data is retained, and when the user comes back with the same
parameters it is reactivated without being resolved again.

# Concept

sticky never runs hooks itself. It plans each transition, then hands an
external engine a pair of substitute paths in which every element already
carries the hook that should run. The bundled in-memory engine
(pkg/adapters/memory) is a complete implementation of that port; any engine
that walks exit-then-enter over two paths can be plugged in with
WithTransitionEngine.

Inactive states stay attached to a virtual root, so views of an inactive
sibling remain reachable through Locals while another subtree is active.

# Usage

	b := dsl.New()
	b.Add("inbox").Sticky().Template("main", "inbox.html")
	b.Add("inbox.message").Params("id").Template("main", "message.html")
	b.Add("contacts").Template("main", "contacts.html")
	t, _ := b.Build()

	eng := sticky.New(t)
	ctx := context.Background()

	eng.Go(ctx, "inbox.message", domain.Params{"id": "42"})
	eng.Go(ctx, "contacts", nil)          // inbox is inactivated, not exited
	eng.Go(ctx, "inbox.message", domain.Params{"id": "42"}) // reactivated

Trees can also be loaded from YAML with NewFromFile (see pkg/loader).
*/
package sticky
