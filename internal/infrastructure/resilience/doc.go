/*
Package resilience provides a circuit breaker for remote entry hosts.

# Overview

Remote bundles are served by CDNs and edge hosts of varying reliability.
The circuit breaker stops the host from hammering an entry host that is
down: after sustained failure, fetches fail fast until the host recovers.

# Usage

	breaker := resilience.New("remote-fetch", resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	result, err := breaker.Execute(func() (interface{}, error) {
		return fetcher.Get(url)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
