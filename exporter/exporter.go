/*
 * Copyright 2025 The txgbe daemon authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package exporter publishes the managed adapters' thermal state as
// Prometheus metrics. Temperatures and thresholds are read back from
// the hwmon attribute files rather than from the HAL, so a scrape
// exercises the same path an hwmon consumer would.
package exporter

import (
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Igorbunow/txgbe/adapter"
	"github.com/Igorbunow/txgbe/hwmon"
)

const (
	// OK is the float representation of a healthy state
	OK = 1.0
	// BAD is the float representation of an unhealthy state
	BAD = 0.0
)

var (
	log *zap.Logger
)

// alarmStatuser is implemented by HALs whose silicon latches threshold
// crossings in a status register.
type alarmStatuser interface {
	AlarmStatus() (alarm, dalarm bool)
}

// Exporter collects thermal stats from the managed adapters and exports
// them using the prometheus metrics package.
type Exporter struct {
	mutex         sync.RWMutex
	registry      *adapter.Registry
	host          *hwmon.Host
	deviceMetrics *map[string]*metrics
}

// NewExporter returns an initialized Exporter over the daemon's adapter
// registry and monitoring host.
func NewExporter(registry *adapter.Registry, host *hwmon.Host) *Exporter {
	log = zap.L()

	return &Exporter{
		registry:      registry,
		host:          host,
		deviceMetrics: NewDeviceMetrics(),
	}
}

// Describe describes all the metrics ever exported by the txgbe
// exporter. It implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range *e.deviceMetrics {
		for _, n := range *m {
			n.Describe(ch)
		}
	}
}

// Collect reads the current thermal state of every managed adapter and
// delivers it as Prometheus metrics. It implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	e.mutex.Lock() // To protect metrics from concurrent collects.
	defer e.mutex.Unlock()

	e.resetMetrics()
	e.scrape()
	e.collectMetrics(ch)
}

func (e *Exporter) resetMetrics() {
	for _, m := range *e.deviceMetrics {
		for _, n := range *m {
			n.Reset()
		}
	}
}

func (e *Exporter) collectMetrics(metrics chan<- prometheus.Metric) {
	for _, m := range *e.deviceMetrics {
		for _, n := range *m {
			n.Collect(metrics)
		}
	}
}

func (e *Exporter) scrape() {
	var upMetric = (*e.deviceMetrics)["up"]
	var thermal = (*e.deviceMetrics)["thermalMetrics"]

	for _, a := range e.registry.List() {
		state := OK

		if a.Monitoring() {
			if !e.scrapeAdapter(a, thermal) {
				state = BAD
			}
		}

		(*upMetric)["up"].WithLabelValues(a.PCIAddress, a.Model).Set(state)
	}
}

// scrapeAdapter reads one adapter's attribute files and alarm bits,
// reporting whether every read succeeded.
func (e *Exporter) scrapeAdapter(a *adapter.Adapter, thermal *metrics) bool {
	hwmonName := a.HwmonName()

	dev, ok := e.host.Device(hwmonName)
	if !ok {
		log.Warn("hwmon device vanished from the monitoring host",
			zap.String("pci_address", a.PCIAddress),
			zap.String("hwmon", hwmonName))
		return false
	}

	good := true
	attrs := map[string]string{
		"temperature":  "temp0_input",
		"alarmThresh":  "temp0_alarmthresh",
		"dalarmThresh": "temp0_dalarmthresh",
	}
	for metric, attr := range attrs {
		deg, err := readDegrees(dev, attr)
		if err != nil {
			log.Warn("failed to read hwmon attribute",
				zap.String("pci_address", a.PCIAddress),
				zap.String("attr", attr),
				zap.Error(err))
			good = false
			continue
		}
		(*thermal)[metric].WithLabelValues(a.PCIAddress, a.Model, hwmonName).Set(deg)
	}

	if as, ok := a.Thermal().(alarmStatuser); ok {
		alarm, dalarm := as.AlarmStatus()
		(*thermal)["alarm"].WithLabelValues(a.PCIAddress, a.Model, hwmonName).Set(boolToState(alarm))
		(*thermal)["dalarm"].WithLabelValues(a.PCIAddress, a.Model, hwmonName).Set(boolToState(dalarm))
	}

	return good
}

// readDegrees parses an hwmon millidegree attribute back into degrees
// Celsius.
func readDegrees(dev *hwmon.Device, attr string) (float64, error) {
	raw, err := dev.ReadFile(attr)
	if err != nil {
		return 0, err
	}
	milli, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	return milli / 1000, nil
}

func boolToState(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
