// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//IMetric metric reader
type IMetric interface {
	Read()
}

//IMetricManager metric manager
type IMetricManager interface {
	Add(metrics ...IMetric)
	Listen(ctx context.Context, route string, port uint16) error
}

//metricsManager metrics manager
type metricsManager struct {
	sync.Mutex
	metrics  []IMetric
	interval time.Duration
	gatherer prometheus.Gatherer
}

//Metrics creates metric instance. Registered readers are polled every
//interval until ctx is done; gatherer is what Listen exposes.
func Metrics(ctx context.Context, interval time.Duration, gatherer prometheus.Gatherer) IMetricManager {
	res := &metricsManager{
		interval: interval,
		gatherer: gatherer,
	}

	go res.collector(ctx)
	return res
}

func (m *metricsManager) Add(metrics ...IMetric) {
	m.Lock()
	m.metrics = append(m.metrics, metrics...)
	m.Unlock()

	for _, metric := range metrics {
		metric.Read()
	}
}

func (m *metricsManager) collector(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Lock()
			metrics := append([]IMetric(nil), m.metrics...)
			m.Unlock()

			for _, v := range metrics {
				v.Read()
			}
		}
	}
}

// Listen serves the gathered metrics on route until ctx is done.
func (m *metricsManager) Listen(ctx context.Context, route string, port uint16) error {
	mux := http.NewServeMux()
	mux.Handle(route, promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
