// Package metrics collects fetch throughput in a go-metrics registry.
package metrics
