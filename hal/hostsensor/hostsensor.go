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

// Package hostsensor adapts the host machine's own temperature sensors
// to the hal.Thermal contract, so the daemon can be exercised end to end
// on development machines without txgbe hardware.
package hostsensor

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/Igorbunow/txgbe/hal"
)

const readTimeout = 5 * time.Second

// Fallback thresholds for sensors that do not report their own.
const (
	defaultAlarmThresh  = 100
	defaultDalarmThresh = 90
)

// Thermal reads one of the host's temperature sensors. It implements
// hal.Thermal.
type Thermal struct {
	sensorKey string
	data      hal.ThermalSensorData

	readTemps func(context.Context) ([]host.TemperatureStat, error)
}

// New returns a host-backed thermal source. sensorKey selects the sensor
// by substring match; empty picks the first sensor reported.
func New(sensorKey string) *Thermal {
	return &Thermal{
		sensorKey: sensorKey,
		readTemps: host.SensorsTemperaturesWithContext,
	}
}

// InitSensorThresh locates the configured sensor and seeds the alarm
// thresholds from its reported limits. Hosts with no matching sensor
// report hal.ErrNotSupported.
func (t *Thermal) InitSensorThresh() error {
	t.data = hal.ThermalSensorData{}

	stat, err := t.find()
	if err != nil {
		return errors.Wrap(hal.ErrNotSupported, err.Error())
	}

	t.data.AlarmThresh = defaultAlarmThresh
	if stat.Critical > 0 {
		t.data.AlarmThresh = int(stat.Critical)
	}
	t.data.DalarmThresh = defaultDalarmThresh
	if stat.High > 0 && stat.High <= float64(t.data.AlarmThresh) {
		t.data.DalarmThresh = int(stat.High)
	}

	return nil
}

// RefreshSensorData re-reads the configured sensor. Read failures leave
// the previous value in place.
func (t *Thermal) RefreshSensorData() {
	stat, err := t.find()
	if err != nil {
		return
	}
	t.data.Temp = int(stat.Temperature)
}

func (t *Thermal) SensorData() *hal.ThermalSensorData {
	return &t.data
}

func (t *Thermal) find() (host.TemperatureStat, error) {
	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	defer cancel()

	temps, err := t.readTemps(ctx)
	if err != nil {
		return host.TemperatureStat{}, errors.Wrap(err, "reading host temperature sensors")
	}

	for _, stat := range temps {
		if t.sensorKey == "" || strings.Contains(stat.SensorKey, t.sensorKey) {
			return stat, nil
		}
	}

	return host.TemperatureStat{}, errors.Errorf("no sensor matching %q among %d host sensors", t.sensorKey, len(temps))
}
