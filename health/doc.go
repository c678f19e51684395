// Package health provides health checking for long-running codec hosts.
//
// A Checker reports one component's state as Healthy, Degraded or Unhealthy.
// CacheChecker watches shape-cache utilization so operators notice when a
// codec instance is churning its cache; MemoryChecker watches process heap
// usage. Aggregator fans checks out and folds the results into one overall
// status, and the HTTP handlers expose the usual liveness/readiness probes.
//
//	agg := health.NewAggregator()
//	agg.Register("cache", health.NewCacheChecker(c, health.CacheCheckerConfig{}))
//	agg.Register("memory", health.NewMemoryChecker(health.MemoryCheckerConfig{}))
//
//	http.Handle("/healthz", health.LivenessHandler())
//	http.Handle("/readyz", health.ReadinessHandler(agg))
package health
