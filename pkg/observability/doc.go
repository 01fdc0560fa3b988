/*
Package observability turns the engine's observer hooks into logs and
Prometheus metrics.

Both helpers return a domain.ObserverHooks value, so they can be merged and
handed to sticky.WithObserver:

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	hooks := metrics.Hooks().Merge(observability.LogHooks(logger))
	eng := sticky.New(tree, engine, sticky.WithObserver(hooks))
*/
package observability
