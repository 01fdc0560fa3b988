/*
Package dsl provides a fluent builder for programmatically constructing state trees.

It is the code-first counterpart of the YAML loader: views and lifecycle hooks
are plain Go functions, which makes it the natural choice for tests and for
applications whose hooks need closures.

Example usage:

	b := dsl.New()

	b.Add("inbox").
		Sticky().
		Params("folder").
		Template("main", "inbox.html").
		OnInactivate(pauseSync)

	b.Add("inbox.message").
		Params("id").
		View("main", loadMessage)

	b.Add("settings").DeepSticky()

	t, err := b.Build()
	// ... pass t to sticky.New(...)
*/
package dsl
