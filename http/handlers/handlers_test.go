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

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Igorbunow/txgbe/adapter"
	"github.com/Igorbunow/txgbe/hal/sapphire"
	"github.com/Igorbunow/txgbe/hwmon"
)

func testMux(t *testing.T) (*http.ServeMux, *adapter.Registry, *hwmon.Host) {
	t.Helper()

	host := hwmon.NewHost()
	registry := adapter.NewRegistry()

	a0 := adapter.New(adapter.Params{
		ID:         0,
		PCIAddress: "0000:03:00.0",
		Model:      "SP1000",
		LanID:      0,
		Thermal:    sapphire.New(sapphire.SimRegisters(45), 0),
	}, host, true)
	a1 := adapter.New(adapter.Params{
		ID:         1,
		PCIAddress: "0000:03:00.1",
		Model:      "SP1000",
		LanID:      1,
		Thermal:    sapphire.New(sapphire.SimRegisters(45), 1),
	}, host, true)

	if err := a0.Attach(); err != nil {
		t.Fatal(err)
	}
	if err := a1.Attach(); err != nil {
		t.Fatal(err)
	}
	registry.Add(a0)
	registry.Add(a1)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /devices", DevicesHandler(registry))
	mux.HandleFunc("GET /hwmon/{device}/{attr}", HwmonHandler(host))
	return mux, registry, host
}

func Test_DevicesHandler(t *testing.T) {
	assert := assert.New(t)

	mux, _, _ := testMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices", nil))

	assert.Equal(http.StatusOK, rec.Code)
	assert.Equal("application/json", rec.Header().Get("Content-Type"))

	var out []DeviceInfo
	assert.Nil(json.NewDecoder(rec.Body).Decode(&out))
	assert.Len(out, 2)

	assert.Equal("0000:03:00.0", out[0].PCIAddress)
	assert.Equal("SP1000", out[0].Model)
	assert.Equal(0, out[0].LanID)
	assert.True(out[0].Monitoring)
	assert.Equal("hwmon0", out[0].Hwmon)

	// the secondary port carries no sensor
	assert.Equal(1, out[1].LanID)
	assert.False(out[1].Monitoring)
	assert.Equal("", out[1].Hwmon)
}

func Test_HwmonHandler(t *testing.T) {
	assert := assert.New(t)

	mux, _, _ := testMux(t)

	tests := []struct {
		name     string
		path     string
		code     int
		expected string
	}{
		{"temperature", "/hwmon/hwmon0/temp0_input", http.StatusOK, "45000\n"},
		{"alarm threshold", "/hwmon/hwmon0/temp0_alarmthresh", http.StatusOK, "100000\n"},
		{"danger threshold", "/hwmon/hwmon0/temp0_dalarmthresh", http.StatusOK, "90000\n"},
		{"unknown device", "/hwmon/hwmon9/temp0_input", http.StatusNotFound, ""},
		{"unknown attribute", "/hwmon/hwmon0/fan0_input", http.StatusNotFound, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, test.path, nil))

			assert.Equal(test.code, rec.Code, test.path)
			if test.code == http.StatusOK {
				assert.Equal(test.expected, rec.Body.String())
				assert.Equal("text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
			}
		})
	}
}
