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

package exporter

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics map[string]*prometheus.GaugeVec

func newSensorMetric(metricName string, docString string, constLabels prometheus.Labels, labelNames []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        metricName,
			Help:        docString,
			ConstLabels: constLabels,
		},
		labelNames,
	)
}

func NewDeviceMetrics() *map[string]*metrics {
	var (
		UpMetric = &metrics{
			"up": newSensorMetric("txgbe_up", "Was the adapter readable during the last scrape, 1 = OK, 0 = BAD", nil, []string{"pci_address", "model"}),
		}

		ThermalMetrics = &metrics{
			"temperature":  newSensorMetric("txgbe_temperature_celsius", "Current die temperature reading in Celsius", nil, []string{"pci_address", "model", "hwmon"}),
			"alarmThresh":  newSensorMetric("txgbe_temperature_alarm_threshold_celsius", "Temperature alarm threshold in Celsius", nil, []string{"pci_address", "model", "hwmon"}),
			"dalarmThresh": newSensorMetric("txgbe_temperature_danger_threshold_celsius", "Temperature danger alarm threshold in Celsius", nil, []string{"pci_address", "model", "hwmon"}),
			"alarm":        newSensorMetric("txgbe_thermal_alarm", "Temperature alarm threshold crossed, 1 = ALARM, 0 = OK", nil, []string{"pci_address", "model", "hwmon"}),
			"dalarm":       newSensorMetric("txgbe_thermal_danger_alarm", "Temperature danger alarm threshold crossed, 1 = ALARM, 0 = OK", nil, []string{"pci_address", "model", "hwmon"}),
		}

		Metrics = &map[string]*metrics{
			"up":             UpMetric,
			"thermalMetrics": ThermalMetrics,
		}
	)

	return Metrics
}
