/*
 * babeld. Copyright (C) 2021-present
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

// Package metrics exposes babeld's operational gauges and counters over
// Prometheus. It is additive observability, not part of the protocol core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tinynet/babeld/babel"
)

var (
	NeighborCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "babeld",
		Name:      "neighbors",
		Help:      "Number of neighbors currently tracked.",
	})

	RouteCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "babeld",
		Name:      "routes",
		Help:      "Number of route entries currently installed.",
	})

	EventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "babeld",
		Name:      "events_total",
		Help:      "Count of events emitted by the node, by kind.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(NeighborCount, RouteCount, EventsTotal)
}

// Observe updates the gauges from the node's current state and counts
// each event by kind.
func Observe(n *babel.Node, events []babel.Event) {
	NeighborCount.Set(float64(len(n.Neighbors())))
	RouteCount.Set(float64(len(n.Routes())))

	for _, e := range events {
		switch e.(type) {
		case babel.NeighborUp:
			EventsTotal.WithLabelValues("neighbor_up").Inc()
		case babel.NeighborDown:
			EventsTotal.WithLabelValues("neighbor_down").Inc()
		case babel.RouteUpdated:
			EventsTotal.WithLabelValues("route_updated").Inc()
		case babel.BestRouteChanged:
			EventsTotal.WithLabelValues("best_route_changed").Inc()
		}
	}
}
