package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mchtech/webcache"
	"github.com/mchtech/webcache/config"
	"github.com/mchtech/webcache/origin"
	"github.com/mchtech/webcache/transport"
)

func newServeCommand() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the cache-coordination proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			store, err := openStore(cfg.KV)
			if err != nil {
				return err
			}

			logger := logrus.New()

			registry := prometheus.NewRegistry()
			metrics := webcache.NewPromMetrics(registry)

			handler := &webcache.Handler{
				Store: store,
				Origin: origin.New(origin.Config{
					BaseURL:        cfg.Origin.BaseURL,
					ConnectTimeout: cfg.Origin.ConnectTimeout,
					ReadTimeout:    cfg.Origin.ReadTimeout,
					MaxConcurrent:  cfg.Origin.MaxConcurrent,
				}),
				Clock:   webcache.NewSystemClock(),
				Config:  cfg.ToCacheConfig(),
				Logger:  logger,
				Metrics: metrics,
			}

			mux := http.NewServeMux()
			mux.Handle("/", transport.New(handler))

			if metricsAddr != "" {
				go func() {
					metricsMux := http.NewServeMux()
					metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
					logger.WithField("addr", metricsAddr).Info("serving metrics")
					if err := http.ListenAndServe(metricsAddr, metricsMux); err != nil {
						logger.WithError(err).Error("metrics server exited")
					}
				}()
			}

			logger.WithField("addr", cfg.Listen).Info("serving cache")
			return http.ListenAndServe(cfg.Listen, mux)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "address to serve Prometheus metrics on, empty to disable")
	return cmd
}
