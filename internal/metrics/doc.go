// Package metrics tracks statistical health of the bytes entering the
// entropy pool. Every metric observes whole digests and can be reset
// together with the pool.
package metrics
