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

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/Igorbunow/txgbe/adapter"
	"github.com/Igorbunow/txgbe/buildinfo"
	"github.com/Igorbunow/txgbe/config"
	"github.com/Igorbunow/txgbe/discovery"
	"github.com/Igorbunow/txgbe/exporter"
	"github.com/Igorbunow/txgbe/http/handlers"
	"github.com/Igorbunow/txgbe/hwmon"
	"github.com/Igorbunow/txgbe/logger"
	"github.com/Igorbunow/txgbe/middleware/logging"
	"github.com/Igorbunow/txgbe/middleware/muxprom"
	"github.com/Igorbunow/txgbe/pool"
	"go.uber.org/zap"

	"github.com/nightlyone/lockfile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/alecthomas/kingpin.v2"
)

const app = "txgbed"

var (
	a                 = kingpin.New(app, "hwmon and prometheus exporter daemon for WangXun txgbe network adapters")
	thermalMonitoring = a.Flag("thermal.monitoring", "register discovered adapters with the hwmon host and expose their thermal sensors").Default("true").Envar("TXGBE_THERMAL_MONITORING").Bool()
	attachConcurrency = a.Flag("attach.concurrency", "number of adapters to bring up in parallel").Default("4").Envar("TXGBE_ATTACH_CONCURRENCY").Int()
	inventoryFile     = a.Flag("inventory.file", "yaml inventory of adapters to manage instead of scanning the pci bus").Default("").Envar("TXGBE_INVENTORY_FILE").String()
	simAdapters       = a.Flag("sim.adapters", "number of simulated adapters to create, for development without hardware").Default("0").Envar("TXGBE_SIM_ADAPTERS").Int()
	pidFile           = a.Flag("pidfile", "pidfile guarding against concurrent daemon instances, empty disables the guard").Default("").Envar("TXGBE_PIDFILE").String()
	sslVerify         = a.Flag("ssl.verify", "verify TLS certificates when shipping logs to vector").Default("true").Envar("TXGBE_SSL_VERIFY").Bool()
	logLevel          = a.Flag("log.level", "log level verbosity").PlaceHolder("[debug|info|warn|error]").Default("info").Envar("LOG_LEVEL").String()
	logMethod         = a.Flag("log.method", "alternative method for logging in addition to stdout").PlaceHolder("[file|vector]").Default("").Envar("LOG_METHOD").String()
	logFilePath       = a.Flag("log.file-path", "directory path where log files are written if log-method is file").Default("/var/log/txgbed").Envar("LOG_FILE_PATH").String()
	logFileMaxSize    = a.Flag("log.file-max-size", "max file size in megabytes if log-method is file").Default("256").Envar("LOG_FILE_MAX_SIZE").String()
	logFileMaxBackups = a.Flag("log.file-max-backups", "max file backups before they are rotated if log-method is file").Default("1").Envar("LOG_FILE_MAX_BACKUPS").String()
	logFileMaxAge     = a.Flag("log.file-max-age", "max file age in days before they are rotated if log-method is file").Default("1").Envar("LOG_FILE_MAX_AGE").String()
	vectorEndpoint    = a.Flag("vector.endpoint", "vector endpoint to send structured json logs to").Default("http://0.0.0.0:4444").Envar("VECTOR_ENDPOINT").String()
	listenPort        = a.Flag("port", "daemon listen port").Default("9922").Envar("TXGBE_PORT").String()
	printVersion      = a.Flag("version", "print build information and exit").Default("false").Bool()

	log *zap.Logger
)

var wg = sync.WaitGroup{}

func main() {
	ctx := context.Background()

	hostname, err := os.Hostname()
	if err != nil {
		hostname = ""
	}

	a.HelpFlag.Short('h')

	_, err = a.Parse(os.Args[1:])
	if err != nil {
		panic(fmt.Errorf("error parsing argument flags - %s", err.Error()))
	}

	if *printVersion {
		if err := buildinfo.Print(os.Stdout); err != nil {
			panic(err)
		}
		return
	}

	// validate logFilePath exists and is a directory
	if *logMethod == "file" {
		fd, err := os.Stat(*logFilePath)
		if os.IsNotExist(err) {
			panic(err)
		}
		if !fd.IsDir() {
			panic(fmt.Errorf("%s is not a directory", *logFilePath))
		}
	}

	logfileMaxSize, err := strconv.Atoi(*logFileMaxSize)
	if err != nil {
		panic(fmt.Errorf("error converting arg --log.file-max-size to int - %s", err.Error()))
	}

	logfileMaxBackups, err := strconv.Atoi(*logFileMaxBackups)
	if err != nil {
		panic(fmt.Errorf("error converting arg --log.file-max-backups to int - %s", err.Error()))
	}

	logfileMaxAge, err := strconv.Atoi(*logFileMaxAge)
	if err != nil {
		panic(fmt.Errorf("error converting arg --log.file-max-age to int - %s", err.Error()))
	}

	c := &config.Config{
		ThermalMonitoring: *thermalMonitoring,
		SSLVerify:         *sslVerify,
	}

	config.NewConfig(c)

	// init logger config
	logConfig := logger.LoggerConfig{
		LogLevel:  *logLevel,
		LogMethod: *logMethod,
		LogFile: logger.LogFile{
			Path:       *logFilePath,
			MaxSize:    logfileMaxSize,
			MaxBackups: logfileMaxBackups,
			MaxAge:     logfileMaxAge,
		},
		VectorEndpoint: *vectorEndpoint,
	}

	err = logger.Initialize(app, hostname, logConfig)
	if err != nil {
		panic(fmt.Errorf("error initializing logger - log_method=%s vector_endpoint=%s log_file_path=%s log_file_max_size=%d log_file_max_backups=%d log_file_max_age=%d - err=%s",
			*logMethod, *vectorEndpoint, *logFilePath, logfileMaxSize, logfileMaxBackups, logfileMaxAge, err.Error()))
	}

	log = zap.L()
	defer logger.Flush()

	if *logMethod == "vector" {
		log.Info("successfully initialized logger", zap.String("log_method", *logMethod),
			zap.String("vector_endpoint", *vectorEndpoint))
	} else if *logMethod == "file" {
		log.Info("successfully initialized logger", zap.String("log_method", *logMethod),
			zap.String("log_file_path", *logFilePath),
			zap.Int("log_file_max_size", logfileMaxSize),
			zap.Int("log_file_max_backups", logfileMaxBackups),
			zap.Int("log_file_max_age", logfileMaxAge))
	}

	// single instance guard, old pidfiles from crashed runs are handled by
	// lockfile's stale pid detection
	if *pidFile != "" {
		flock, err := lockfile.New(*pidFile)
		if err != nil {
			log.Error("cannot init pidfile", zap.String("pidfile", *pidFile), zap.Error(err))
			return
		}
		if err = flock.TryLock(); err != nil {
			log.Error("cannot acquire pidfile lock, another instance may be running",
				zap.String("pidfile", *pidFile), zap.Error(err))
			return
		}
		defer func() {
			if err := flock.Unlock(); err != nil {
				log.Error("could not release pidfile lock", zap.Error(err))
			}
		}()
	}

	var params []adapter.Params

	switch {
	case *inventoryFile != "":
		inv, err := discovery.LoadInventory(*inventoryFile)
		if err != nil {
			log.Error("cannot load adapter inventory", zap.String("inventory_file", *inventoryFile), zap.Error(err))
			return
		}
		params, err = discovery.FromInventory(inv)
		if err != nil {
			log.Error("cannot open adapter from inventory", zap.String("inventory_file", *inventoryFile), zap.Error(err))
			return
		}
	case *simAdapters > 0:
		params = discovery.Sim(*simAdapters)
	default:
		var err error
		params, err = discovery.ScanPCI()
		if err != nil {
			log.Error("pci bus scan failed", zap.Error(err))
			return
		}
	}

	if len(params) == 0 {
		log.Warn("no txgbe adapters found, serving empty metrics")
	}

	host := hwmon.NewHost()
	registry := adapter.NewRegistry()

	tasks := make([]*pool.Task, 0, len(params))
	for _, p := range params {
		adp := adapter.New(p, host, c.ThermalMonitoring)
		registry.Add(adp)
		tasks = append(tasks, pool.NewTask(adp.Attach, adp))
	}

	concurrency := *attachConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	if len(tasks) > 0 {
		pool.NewPool(tasks, concurrency).Run()
	}

	monitored := 0
	for _, t := range tasks {
		if t.Err != nil {
			log.Warn("thermal monitoring unavailable",
				zap.String("pci_address", t.Adapter.PCIAddress), zap.Error(t.Err))
			continue
		}
		if t.Adapter.Monitoring() {
			monitored++
		}
	}
	log.Info("adapter bring-up complete", zap.Int("adapters", len(params)), zap.Int("monitored", monitored))

	prometheus.MustRegister(exporter.NewExporter(registry, host))

	mux := http.NewServeMux()

	mux.HandleFunc("GET /info", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(buildinfo.Info)
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /devices", handlers.DevicesHandler(registry))

	mux.HandleFunc("GET /hwmon/{device}/{attr}", handlers.HwmonHandler(host))

	tmplIndex := template.Must(template.New("index").Parse(indexTmpl))
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		err := tmplIndex.Execute(w, indexData{Build: buildinfo.Info, Adapters: registry.List()})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("GET /verbosity", logger.Verbosity)
	mux.HandleFunc("PUT /verbosity", logger.SetVerbosity)

	instrumentation := muxprom.NewDefaultInstrumentation()
	wrappedmux := logging.LoggingHandler(instrumentation.Middleware(mux))

	srv := &http.Server{
		Addr:    ":" + *listenPort,
		Handler: wrappedmux,
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	listener, err := net.Listen("tcp4", ":"+*listenPort)
	if err != nil {
		log.Error("starting "+app+" service failed", zap.Error(err))
		signals <- syscall.SIGTERM
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error("http server received an error", zap.Error(err))
				signals <- syscall.SIGTERM
			}
		}()

		log.Info("started "+app+" service", zap.String("listen_addr", srv.Addr))
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s := <-signals
		log.Info(s.String() + " signal caught, stopping app")
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("http server shutdown failed", zap.Error(err))
		}

		// detach only after the http server drained so in-flight hwmon
		// reads never race attribute removal
		registry.DetachAll()
	}()

	wg.Wait()
}
