package main

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"gnsslog/internal/config"
	"gnsslog/internal/metrics"
	"gnsslog/internal/publish"
	"gnsslog/internal/task"
	"gnsslog/internal/web"
)

const publishTimeout = 30 * time.Second

func runServe(ctx context.Context, cfg config.Config) error {
	logs := web.NewLogBuffer(cfg.Web.LogLines)
	log.SetOutput(io.MultiWriter(os.Stderr, logs))

	pool := task.NewPool(task.Config{
		Workers:      cfg.Web.Workers,
		Keep:         cfg.Web.ResultsKept,
		ExcerptChars: cfg.Report.ExcerptChars,
	}, parserFor(cfg))

	var m *metrics.Metrics
	if cfg.Metrics.Enable {
		m = metrics.New()
		pool.Observe(m)
	}

	sinks, err := buildSinks(cfg)
	if err != nil {
		return err
	}
	defer sinks.Close()

	status := web.NewStatus(pool)
	status.SetListen(cfg.Web.Listen)
	notices := web.NewBroadcaster()

	pool.OnDone(func(e task.Entry) {
		status.MarkTask(time.Now().UTC(), e.ID)
		notices.Publish(web.Notice{ID: e.ID, Name: e.Name, Report: e.Report})
		log.Printf("task %s done name=%q epochs=%d bytes=%d in %s",
			e.ID, e.Name, e.Report.Epochs, e.Result.Stats.Bytes, e.Duration)
		if len(sinks) > 0 {
			go publishEntry(sinks, e)
		}
	})

	log.Printf("gnsslog starting")
	log.Printf("web listen=%s workers=%d metrics=%t sinks=%d",
		cfg.Web.Listen, cfg.Web.Workers, cfg.Metrics.Enable, len(sinks))

	h := web.Handler(web.Deps{
		Status:         status,
		Pool:           pool,
		Logs:           logs,
		Notices:        notices,
		Metrics:        m,
		MaxUploadBytes: cfg.Web.MaxUploadBytes,
	})
	err = web.Serve(ctx, cfg.Web.Listen, h)
	log.Printf("gnsslog stopping")
	return err
}

func publishEntry(sinks publish.Sink, e task.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := sinks.Publish(ctx, e.ID, e.Result); err != nil {
		log.Printf("task %s publish failed: %v", e.ID, err)
	}
}
