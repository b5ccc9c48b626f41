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

// Package sapphire drives the thermal sensor block of first-generation
// (SP1000/WX1820) txgbe silicon.
package sapphire

import (
	"github.com/Igorbunow/txgbe/hal"
)

// Thermal sensor register block.
const (
	tsCtl        = 0x10300
	tsEn         = 0x10304
	tsSt         = 0x10308
	tsAlarmThre  = 0x1030C
	tsDalarmThre = 0x10310
	tsIntEn      = 0x10314
	tsAlarmSt    = 0x10318

	tsCtlEvalMd     = 0x80000000
	tsEnEna         = 0x00000001
	tsStDataOutMask = 0x000003FF

	tsIntEnAlarmInt  = 0x00000001
	tsIntEnDalarmInt = 0x00000002

	tsAlarmStAlarm  = 0x00000001
	tsAlarmStDalarm = 0x00000002
)

// Alarm thresholds in whole degrees, with the raw sensor codes the
// datasheet lists for them.
const (
	alarmThreshDeg  = 100
	alarmThreshRaw  = 677
	dalarmThreshDeg = 90
	dalarmThreshRaw = 614
)

// Thermal implements hal.Thermal for the SP sensor block.
type Thermal struct {
	regs  hal.RegisterIO
	lanID int
	data  hal.ThermalSensorData
}

// New returns the thermal capability for one SP port. lanID is the
// physical port the PCI function is bound to.
func New(regs hal.RegisterIO, lanID int) *Thermal {
	return &Thermal{regs: regs, lanID: lanID}
}

// InitSensorThresh enables evaluation mode, programs the alarm
// thresholds and unmasks the threshold interrupts. The sensor is only
// attached to physical port 0; other ports report hal.ErrNotSupported.
func (t *Thermal) InitSensorThresh() error {
	t.data = hal.ThermalSensorData{}

	if t.lanID != 0 {
		return hal.ErrNotSupported
	}

	t.regs.Write32(tsCtl, tsCtlEvalMd)
	t.regs.Write32(tsIntEn, tsIntEnAlarmInt|tsIntEnDalarmInt)
	t.regs.Write32(tsEn, tsEnEna)

	t.data.AlarmThresh = alarmThreshDeg
	t.regs.Write32(tsAlarmThre, alarmThreshRaw)
	t.data.DalarmThresh = dalarmThreshDeg
	t.regs.Write32(tsDalarmThre, dalarmThreshRaw)

	return nil
}

// RefreshSensorData converts the current raw sensor code to whole
// degrees Celsius.
func (t *Thermal) RefreshSensorData() {
	raw := int64(t.regs.Read32(tsSt) & tsStDataOutMask)
	t.data.Temp = degreesFromCode(raw)
}

func (t *Thermal) SensorData() *hal.ThermalSensorData {
	return &t.data
}

// AlarmStatus reports whether the alarm and danger-alarm threshold
// crossings are latched in the status register.
func (t *Thermal) AlarmStatus() (alarm, dalarm bool) {
	st := t.regs.Read32(tsAlarmSt)
	return st&tsAlarmStAlarm != 0, st&tsAlarmStDalarm != 0
}

// degreesFromCode applies the fixed-point calibration polynomial from
// the SP datasheet.
func degreesFromCode(code int64) int {
	if code > 1200 {
		code = 1200
	}
	tsv := -(48380<<8)/1000 + code*(31020<<8)/100000
	return int(tsv >> 8)
}

// SimSensorCode returns a raw sensor code that reads back as the given
// whole-degree temperature. Used to prime simulated register files.
func SimSensorCode(deg int) uint32 {
	code := (int64(deg)<<8 + (48380<<8)/1000) * 100000 / (31020 << 8)
	for code <= tsStDataOutMask && degreesFromCode(code) < deg {
		code++
	}
	return uint32(code)
}

// SimRegisters returns an in-memory register file whose sensor reads
// back as the given whole-degree temperature, with the alarm status
// bits latched the way the silicon would latch them for that reading.
// Used by the simulated discovery backend.
func SimRegisters(deg int) *hal.MemRegisters {
	regs := hal.NewMemRegisters()
	regs.Write32(tsSt, SimSensorCode(deg))

	var st uint32
	if deg >= dalarmThreshDeg {
		st |= tsAlarmStDalarm
	}
	if deg >= alarmThreshDeg {
		st |= tsAlarmStAlarm
	}
	regs.Write32(tsAlarmSt, st)

	return regs
}
