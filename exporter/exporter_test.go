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
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Igorbunow/txgbe/adapter"
	"github.com/Igorbunow/txgbe/hal/sapphire"
	"github.com/Igorbunow/txgbe/hwmon"
)

const (
	GoodTemperatureExpected = `
         # HELP txgbe_temperature_celsius Current die temperature reading in Celsius
         # TYPE txgbe_temperature_celsius gauge
         txgbe_temperature_celsius{hwmon="hwmon0",model="SP1000-SIM",pci_address="sim0"} 45
         txgbe_temperature_celsius{hwmon="hwmon1",model="SP1000-SIM",pci_address="sim1"} 95
	`
	GoodAlarmThreshExpected = `
         # HELP txgbe_temperature_alarm_threshold_celsius Temperature alarm threshold in Celsius
         # TYPE txgbe_temperature_alarm_threshold_celsius gauge
         txgbe_temperature_alarm_threshold_celsius{hwmon="hwmon0",model="SP1000-SIM",pci_address="sim0"} 100
         txgbe_temperature_alarm_threshold_celsius{hwmon="hwmon1",model="SP1000-SIM",pci_address="sim1"} 100
	`
	GoodDalarmThreshExpected = `
         # HELP txgbe_temperature_danger_threshold_celsius Temperature danger alarm threshold in Celsius
         # TYPE txgbe_temperature_danger_threshold_celsius gauge
         txgbe_temperature_danger_threshold_celsius{hwmon="hwmon0",model="SP1000-SIM",pci_address="sim0"} 90
         txgbe_temperature_danger_threshold_celsius{hwmon="hwmon1",model="SP1000-SIM",pci_address="sim1"} 90
	`
	GoodAlarmExpected = `
         # HELP txgbe_thermal_alarm Temperature alarm threshold crossed, 1 = ALARM, 0 = OK
         # TYPE txgbe_thermal_alarm gauge
         txgbe_thermal_alarm{hwmon="hwmon0",model="SP1000-SIM",pci_address="sim0"} 0
         txgbe_thermal_alarm{hwmon="hwmon1",model="SP1000-SIM",pci_address="sim1"} 0
	`
	GoodDalarmExpected = `
         # HELP txgbe_thermal_danger_alarm Temperature danger alarm threshold crossed, 1 = ALARM, 0 = OK
         # TYPE txgbe_thermal_danger_alarm gauge
         txgbe_thermal_danger_alarm{hwmon="hwmon0",model="SP1000-SIM",pci_address="sim0"} 0
         txgbe_thermal_danger_alarm{hwmon="hwmon1",model="SP1000-SIM",pci_address="sim1"} 1
	`
	GoodUpExpected = `
         # HELP txgbe_up Was the adapter readable during the last scrape, 1 = OK, 0 = BAD
         # TYPE txgbe_up gauge
         txgbe_up{model="SP1000-SIM",pci_address="0000:04:00.1"} 1
         txgbe_up{model="SP1000-SIM",pci_address="sim0"} 1
         txgbe_up{model="SP1000-SIM",pci_address="sim1"} 1
	`
	VanishedUpExpected = `
         # HELP txgbe_up Was the adapter readable during the last scrape, 1 = OK, 0 = BAD
         # TYPE txgbe_up gauge
         txgbe_up{model="SP1000-SIM",pci_address="sim0"} 0
	`
)

func simAdapter(t *testing.T, host *hwmon.Host, addr string, lanID, temp int) *adapter.Adapter {
	t.Helper()
	a := adapter.New(adapter.Params{
		PCIAddress: addr,
		Model:      "SP1000-SIM",
		LanID:      lanID,
		Thermal:    sapphire.New(sapphire.SimRegisters(temp), lanID),
	}, host, true)
	if err := a.Attach(); err != nil {
		t.Fatal(err)
	}
	return a
}

func Test_Txgbe_Exporter(t *testing.T) {
	assert := assert.New(t)

	host := hwmon.NewHost()
	registry := adapter.NewRegistry()

	registry.Add(simAdapter(t, host, "sim0", 0, 45))
	registry.Add(simAdapter(t, host, "sim1", 0, 95))
	// a secondary port has no sensor of its own but still counts as up
	registry.Add(simAdapter(t, host, "0000:04:00.1", 1, 45))

	var exporter prometheus.Collector = NewExporter(registry, host)
	prometheus.MustRegister(exporter)
	defer prometheus.Unregister(exporter)

	tests := []struct {
		name       string
		metricName string
		expected   string
	}{
		{"Temperature", "txgbe_temperature_celsius", GoodTemperatureExpected},
		{"Alarm Threshold", "txgbe_temperature_alarm_threshold_celsius", GoodAlarmThreshExpected},
		{"Danger Threshold", "txgbe_temperature_danger_threshold_celsius", GoodDalarmThreshExpected},
		{"Alarm", "txgbe_thermal_alarm", GoodAlarmExpected},
		{"Danger Alarm", "txgbe_thermal_danger_alarm", GoodDalarmExpected},
		{"Up", "txgbe_up", GoodUpExpected},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Empty(testutil.CollectAndCompare(exporter, strings.NewReader(test.expected), test.metricName))
		})
	}
}

func Test_Txgbe_Exporter_VanishedDevice(t *testing.T) {
	assert := assert.New(t)

	host := hwmon.NewHost()
	registry := adapter.NewRegistry()
	a := simAdapter(t, host, "sim0", 0, 45)
	registry.Add(a)

	// pull the device out from under the monitor
	dev, ok := host.Device(a.HwmonName())
	assert.True(ok)
	dev.Unregister()

	exporter := NewExporter(registry, host)

	assert.Empty(testutil.CollectAndCompare(exporter, strings.NewReader(VanishedUpExpected), "txgbe_up"))
	assert.Empty(testutil.CollectAndCompare(exporter, strings.NewReader(""), "txgbe_temperature_celsius"))
}
