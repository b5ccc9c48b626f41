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

package thermal

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Igorbunow/txgbe/hwmon"
)

// AttrKind selects which sensor attribute a descriptor exposes.
type AttrKind int

const (
	// AttrCurrentTemp is the live die temperature. Reading it triggers a
	// fresh sensor sample.
	AttrCurrentTemp AttrKind = iota
	// AttrAlarmThresh is the critical alarm threshold programmed at init.
	AttrAlarmThresh
	// AttrDalarmThresh is the danger (pre-critical) alarm threshold.
	AttrDalarmThresh
)

// attrKinds is the registration order for a monitor's attribute files.
var attrKinds = [...]AttrKind{AttrCurrentTemp, AttrAlarmThresh, AttrDalarmThresh}

// ErrUnknownAttrKind is returned when an AttrKind has no descriptor.
var ErrUnknownAttrKind = errors.New("thermal: unknown attribute kind")

// sensorChannel is the hwmon channel index of the on-die sensor. The
// sapphire silicon carries a single thermal diode, so everything lives
// on channel 0.
const sensorChannel = 0

// buildAttr produces the read-only descriptor for one attribute kind.
// Only the current-temperature attribute refreshes the sensor; the
// thresholds are programmed once at init and served as-is.
func (m *Monitor) buildAttr(kind AttrKind) (hwmon.Attribute, error) {
	hw := m.hw
	attr := hwmon.Attribute{Mode: hwmon.ModeReadOnly}

	switch kind {
	case AttrCurrentTemp:
		attr.Name = fmt.Sprintf("temp%d_input", sensorChannel)
		attr.Show = func() (string, error) {
			hw.RefreshSensorData()
			return formatMilliDegrees(hw.SensorData().Temp), nil
		}
	case AttrAlarmThresh:
		attr.Name = fmt.Sprintf("temp%d_alarmthresh", sensorChannel)
		attr.Show = func() (string, error) {
			return formatMilliDegrees(hw.SensorData().AlarmThresh), nil
		}
	case AttrDalarmThresh:
		attr.Name = fmt.Sprintf("temp%d_dalarmthresh", sensorChannel)
		attr.Show = func() (string, error) {
			return formatMilliDegrees(hw.SensorData().DalarmThresh), nil
		}
	default:
		return hwmon.Attribute{}, fmt.Errorf("%w: %d", ErrUnknownAttrKind, kind)
	}

	return attr, nil
}

// formatMilliDegrees renders whole degrees the way hwmon consumers
// expect them: millidegrees Celsius, decimal, trailing newline.
func formatMilliDegrees(deg int) string {
	return strconv.Itoa(deg*1000) + "\n"
}
