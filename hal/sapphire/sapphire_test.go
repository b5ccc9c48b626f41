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

package sapphire

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Igorbunow/txgbe/hal"
)

func Test_InitSensorThresh(t *testing.T) {
	assert := assert.New(t)

	regs := hal.NewMemRegisters()
	th := New(regs, 0)

	err := th.InitSensorThresh()
	assert.Nil(err)

	data := th.SensorData()
	assert.Equal(100, data.AlarmThresh)
	assert.Equal(90, data.DalarmThresh)
	assert.Equal(0, data.Temp)

	assert.Equal(uint32(tsCtlEvalMd), regs.Read32(tsCtl))
	assert.Equal(uint32(tsEnEna), regs.Read32(tsEn))
	assert.Equal(uint32(tsIntEnAlarmInt|tsIntEnDalarmInt), regs.Read32(tsIntEn))
	assert.Equal(uint32(alarmThreshRaw), regs.Read32(tsAlarmThre))
	assert.Equal(uint32(dalarmThreshRaw), regs.Read32(tsDalarmThre))
}

func Test_InitSensorThresh_SecondaryPort(t *testing.T) {
	assert := assert.New(t)

	th := New(hal.NewMemRegisters(), 1)

	err := th.InitSensorThresh()
	assert.ErrorIs(err, hal.ErrNotSupported)
	assert.Equal(0, th.SensorData().AlarmThresh)
}

func Test_RefreshSensorData(t *testing.T) {
	assert := assert.New(t)

	regs := hal.NewMemRegisters()
	th := New(regs, 0)
	assert.Nil(th.InitSensorThresh())

	for _, deg := range []int{0, 25, 45, 50, 90, 100, 125} {
		regs.Write32(tsSt, SimSensorCode(deg))
		th.RefreshSensorData()
		assert.Equal(deg, th.SensorData().Temp)
	}
}

func Test_RefreshSensorData_KeepsThresholds(t *testing.T) {
	assert := assert.New(t)

	regs := hal.NewMemRegisters()
	th := New(regs, 0)
	assert.Nil(th.InitSensorThresh())

	regs.Write32(tsSt, SimSensorCode(45))
	th.RefreshSensorData()

	data := th.SensorData()
	assert.Equal(45, data.Temp)
	assert.Equal(100, data.AlarmThresh)
	assert.Equal(90, data.DalarmThresh)
}

func Test_AlarmStatus(t *testing.T) {
	assert := assert.New(t)

	regs := hal.NewMemRegisters()
	th := New(regs, 0)

	alarm, dalarm := th.AlarmStatus()
	assert.False(alarm)
	assert.False(dalarm)

	regs.Write32(tsAlarmSt, tsAlarmStDalarm)
	alarm, dalarm = th.AlarmStatus()
	assert.False(alarm)
	assert.True(dalarm)

	regs.Write32(tsAlarmSt, tsAlarmStAlarm|tsAlarmStDalarm)
	alarm, dalarm = th.AlarmStatus()
	assert.True(alarm)
	assert.True(dalarm)
}

func Test_SimRegisters(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		deg    int
		alarm  bool
		dalarm bool
	}{
		{45, false, false},
		{89, false, false},
		{90, false, true},
		{99, false, true},
		{100, true, true},
		{125, true, true},
	}

	for _, test := range tests {
		th := New(SimRegisters(test.deg), 0)
		assert.Nil(th.InitSensorThresh())

		th.RefreshSensorData()
		assert.Equal(test.deg, th.SensorData().Temp)

		alarm, dalarm := th.AlarmStatus()
		assert.Equal(test.alarm, alarm, "alarm at %d", test.deg)
		assert.Equal(test.dalarm, dalarm, "dalarm at %d", test.deg)
	}
}
