// Package health reports whether the service can serve context builds.
//
// A Checker reports one component; an Aggregator runs several and folds them
// into a single Status. StoreChecker pings the profile store, CacheChecker
// reports on the profile context cache, and Routes exposes the usual
// liveness, readiness and detail endpoints:
//
//	agg := health.NewAggregator()
//	agg.Register("store", health.NewStoreChecker(store))
//	agg.Register("cache", health.NewCacheChecker(c, 10000))
//	r.Mount("/", health.Routes(agg))
package health
