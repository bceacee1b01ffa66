// Package unleashprom exports client evaluation counts and repository state as Prometheus metrics.
//
//	metrics, err := unleashprom.NewMetrics(prometheus.DefaultRegisterer, "myapp")
//	config := unleash.Config{AppName: "myapp", URL: url, Metrics: metrics}
//	client, err := unleash.NewClient(config)
//	go metrics.ObserveRepository(client.AddEventListener())
package unleashprom
