// Package redis provides the Redis client and component behind broadcast
// channels.
//
// A broadcast channel appends every value to a list per input index; each
// downstream consumer reads the full lists, which is what replicating an
// unordered exchange to all consumers amounts to.
//
//	redis:
//	  addr: "localhost:6379"
//	  key_prefix: "dataflow"
//	  ttl: "24h"
package redis
