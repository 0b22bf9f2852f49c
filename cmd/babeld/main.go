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

package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tinynet/babeld/babel"
	"github.com/tinynet/babeld/config"
	baballog "github.com/tinynet/babeld/log"
	"github.com/tinynet/babeld/metrics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "babeld",
		Short: "A Babel (RFC 8966) routing daemon core",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "babeld.yaml", "path to YAML config file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")

	return cmd
}

func run(configPath string, verbose bool) error {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
	logger := baballog.NewZerolog(zl)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	routerID, err := cfg.RouterIDBytes()
	if err != nil {
		return err
	}

	nodeConfig, err := cfg.NodeConfig()
	if err != nil {
		return err
	}

	iface, err := net.InterfaceByName(cfg.Interface)
	if err != nil {
		return fmt.Errorf("resolving interface %q: %w", cfg.Interface, err)
	}

	node, err := babel.NewV4Multicast(iface, uint32(iface.Index), routerID, nodeConfig, logger)
	if err != nil {
		return fmt.Errorf("starting node: %w", err)
	}
	defer node.Close()

	if cfg.MetricsListen != "" {
		go serveMetrics(cfg.MetricsListen, logger)
	}

	logger.Notice("babeld starting", baballog.KV{
		"interface": cfg.Interface,
		"router_id": fmt.Sprintf("%x", routerID),
	})

	for {
		if err := node.Poll(); err != nil {
			logger.Error("poll failed", baballog.KV{"error": err.Error()})
			return err
		}

		events := node.DrainEvents()
		metrics.Observe(node, events)
		for _, ev := range events {
			printEvent(logger, ev)
		}

		time.Sleep(20 * time.Millisecond)
	}
}

func serveMetrics(addr string, logger baballog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", baballog.KV{"error": err.Error()})
	}
}

func printEvent(logger baballog.Logger, ev babel.Event) {
	switch e := ev.(type) {
	case babel.NeighborUp:
		logger.Info("neighbor up", baballog.KV{"addr": e.Addr.String()})
	case babel.NeighborDown:
		logger.Info("neighbor down", baballog.KV{"addr": e.Addr.String()})
	case babel.RouteUpdated:
		logger.Info("route updated", baballog.KV{"route": e.Route.String()})
	case babel.BestRouteChanged:
		logger.Notice("best route changed", baballog.KV{"route": e.Route.String()})
	}
}
