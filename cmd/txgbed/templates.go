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

package main

import "github.com/Igorbunow/txgbe/adapter"

type indexData struct {
	Build    any
	Adapters []*adapter.Adapter
}

const indexTmpl string = `<html>
  <head>
    <title>txgbe Daemon</title>
    <style>
      .links, .build-info {
        display: flex;
      }
      h3, p {
        padding-right: 1em;
      }
      table {
        border-collapse: collapse;
      }
      th, td {
        border: 1px solid #ccc;
        padding: 4px 10px;
        text-align: left;
      }
    </style>
  </head>
  <body>
    <h1>txgbe Daemon</h1>
    <div class="build-info">
      <p><b>build date:</b> {{ .Build.Date }}</p>
      <p><b>revision:</b> {{ .Build.GitRevision }}</p>
      <p><b>version:</b> {{ .Build.GitVersion }}</p>
    </div>
    <div class="links">
      <h3><a href="devices">Devices</a></h3>
      <h3><a href="metrics">Metrics</a></h3>
    </div>
    <table>
      <tr>
        <th>ID</th><th>PCI Address</th><th>Model</th><th>Lan</th><th>Sensor</th>
      </tr>
      {{range .Adapters}}
      <tr>
        <td>{{ .ID }}</td>
        <td>{{ .PCIAddress }}</td>
        <td>{{ .Model }}</td>
        <td>{{ .LanID }}</td>
        {{if .Monitoring}}
        <td><a href="hwmon/{{ .HwmonName }}/temp0_input">{{ .HwmonName }}</a></td>
        {{else}}
        <td>none</td>
        {{end}}
      </tr>
      {{end}}
    </table>
  </body>
</html>
`
