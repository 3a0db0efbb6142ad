/*
Package monitoring provides Prometheus metrics for the module gateway.

# Metrics

- HTTP request count and latency by route
- Evaluation count by module, action and outcome, plus round-trip latency
- Context bootstrap count and latency by module
- Number of live module contexts

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

A nil *Metrics is valid and records nothing.
*/
package monitoring
