/*
Package locals implements layered view data for state trees.

Every state owns at most one Layer holding entries keyed "view@state". A Chain
orders layers from strongest (the state itself) to weakest (its ancestors, then
the inactive pool) and resolves a key by walking that order front to back.

Values are stored by reference. Renderers may compare the value returned for a
key across renders and skip work when the pointer is unchanged.
*/
package locals
