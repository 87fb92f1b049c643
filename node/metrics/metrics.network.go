// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gitlab.com/jaxnet/chainsim/network"
)

const namespace = "chainsim"

type networkMetrics struct {
	sync.Mutex
	metricsByName map[string]prometheus.Gauge
	net           *network.Network
	registerer    prometheus.Registerer
	logger        zerolog.Logger

	replicaHeight   *prometheus.GaugeVec
	replicaValid    *prometheus.GaugeVec
	replicaFindings *prometheus.GaugeVec
}

// NetworkMetrics exposes the replica count, valid replica count and majority
// outcome of net, plus height, validity and finding count per replica.
func NetworkMetrics(net *network.Network, registerer prometheus.Registerer, logger zerolog.Logger) IMetric {
	s := &networkMetrics{
		net:           net,
		registerer:    registerer,
		logger:        logger,
		metricsByName: make(map[string]prometheus.Gauge),
	}

	s.replicaHeight = s.registerVec("height", "Number of blocks held by the replica")
	s.replicaValid = s.registerVec("valid", "1 when the replica passes validation")
	s.replicaFindings = s.registerVec("findings", "Number of per-block findings of the replica")
	return s
}

func (s *networkMetrics) registerVec(name, help string) *prometheus.GaugeVec {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "replica",
		Name:      name,
		Help:      help,
	}, []string{"replica"})

	if err := s.registerer.Register(vec); err != nil {
		s.logger.Error().Err(err).Str("metric", name).Msg("can't register metric")
	}
	return vec
}

func (s *networkMetrics) Read() {
	st := s.net.Status()

	s.updateGauge(prometheus.BuildFQName(namespace, "network", "replicas"), "Number of replicas", float64(st.Size))
	s.updateGauge(prometheus.BuildFQName(namespace, "network", "valid_replicas"), "Number of replicas passing validation", float64(st.Valid))
	s.updateGauge(prometheus.BuildFQName(namespace, "network", "majority"), "1 when a majority of replicas is valid", boolGauge(st.Majority))

	for i, r := range st.Reports {
		replica := strconv.Itoa(st.ReplicaID(i))
		s.replicaHeight.WithLabelValues(replica).Set(float64(r.Length))
		s.replicaValid.WithLabelValues(replica).Set(boolGauge(r.Valid()))
		s.replicaFindings.WithLabelValues(replica).Set(float64(len(r.Findings)))
	}
}

func (s *networkMetrics) updateGauge(name, help string, value float64) {
	s.Lock()
	defer s.Unlock()

	m, ok := s.metricsByName[name]
	if !ok {
		m = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: name,
			Help: help,
		})
		err := s.registerer.Register(m)
		if err != nil {
			s.logger.Error().Err(err).Str("metric", name).Msg("can't register metric")
		}
		s.metricsByName[name] = m
	}
	m.Set(value)
}

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
