// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ZSC714725/recordscheduler/internal/api"
	"github.com/ZSC714725/recordscheduler/internal/config"
	"github.com/ZSC714725/recordscheduler/internal/ffmpeg"
	"github.com/ZSC714725/recordscheduler/internal/logger"
	"github.com/ZSC714725/recordscheduler/internal/recording"
	"github.com/ZSC714725/recordscheduler/internal/scheduler"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	bind := flag.String("bind", "", "Bind address (overrides config)")
	dataRoot := flag.String("data", "", "Data root for task scripts (overrides config)")
	flag.Parse()

	fileCfg := config.Default()
	if *configPath != "" {
		var err error
		fileCfg, err = config.Load(*configPath)
		if err != nil {
			logger.New("main").Fatal().Err(err).Msg("load config")
		}
	}
	cfg := config.Overrides{Bind: *bind, DataRoot: *dataRoot}.Apply(fileCfg)

	logger.Configure(logger.Config{Level: cfg.Log.Level})
	log := logger.New("main")

	if _, err := exec.LookPath(cfg.FFmpeg.Path); err != nil {
		log.Warn().Err(err).Str("ffmpeg", cfg.FFmpeg.Path).Msg("ffmpeg not found, scheduled recordings will fail when they fire")
	}

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler timezone")
	}

	sched, err := scheduler.New(scheduler.Config{
		DataRoot:              cfg.Storage.DataRoot,
		ScriptExtension:       cfg.Storage.ScriptExtension,
		AtBinary:              cfg.Scheduler.At,
		AtqBinary:             cfg.Scheduler.Atq,
		AtrmBinary:            cfg.Scheduler.Atrm,
		Shell:                 cfg.Scheduler.Shell,
		Timeout:               cfg.Scheduler.CommandTimeout,
		RemoveAfterCompletion: cfg.Scheduler.RemoveAfterCompletion,
		Location:              loc,
		Logger:                logger.New("scheduler"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler init")
	}

	inputs, err := ffmpeg.NewValidator(cfg.FFmpeg.InputAllow, cfg.FFmpeg.InputBlock)
	if err != nil {
		log.Fatal().Err(err).Msg("input validator")
	}
	outputs, err := ffmpeg.NewValidator(cfg.FFmpeg.OutputAllow, cfg.FFmpeg.OutputBlock)
	if err != nil {
		log.Fatal().Err(err).Msg("output validator")
	}

	handler := api.NewHandler(api.Config{
		Scheduler: sched,
		Translator: recording.Translator{
			Builder: ffmpeg.Builder{Binary: cfg.FFmpeg.Path, DefaultFormat: cfg.FFmpeg.DefaultFormat},
		},
		Inputs:   inputs,
		Outputs:  outputs,
		Defaults: cfg.Encoding,
		Logger:   logger.New("api"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *configPath != "" {
		watcher := config.NewWatcher(*configPath, fileCfg, logger.New("config"))
		go func() {
			err := watcher.Watch(ctx, func(c config.Change) {
				switch c.Kind {
				case config.KindEncoding:
					handler.SetDefaults(c.Config.Encoding)
					log.Info().Msg("encoding defaults reloaded")
				case config.KindLog:
					logger.SetLevel(c.Config.Log.Level)
					log.Info().Str("level", c.Config.Log.Level).Msg("log level reloaded")
				case config.KindServer, config.KindStorage, config.KindScheduler, config.KindFFmpeg:
					log.Warn().Str("section", string(c.Kind)).Msg("config section changed, restart required")
				}
			})
			if err != nil {
				log.Error().Err(err).Msg("config watcher stopped")
			}
		}()
	}

	r := gin.Default()
	r.Use(cors.Default())
	handler.Register(r.Group("/api/v1"))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{Addr: cfg.Server.Bind, Handler: r}
	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("bind", cfg.Server.Bind).Msg("RecordScheduler listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server")
	}
}
