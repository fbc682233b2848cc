package main

import (
	"fmt"
	"os"
	"time"

	"git.lost.host/meutraa/stepline/internal/config"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := run(); nil != err {
		log.Fatalln(err)
	}
}

func setupLogging() (func(), error) {
	level, err := log.ParseLevel(*config.LogLevel)
	if nil != err {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{DisableColors: true, DisableQuote: true})

	if *config.LogFile == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(*config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if nil != err {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}, nil
}

func run() error {
	if err := config.Parse(os.Args[1:]); nil != err {
		return fmt.Errorf("unable to parse arguments: %w", err)
	}

	closeLog, err := setupLogging()
	if nil != err {
		return err
	}
	defer closeLog()

	p := &Program{}
	if err := p.Init(); nil != err {
		p.Deinit()
		return err
	}

	if err := p.Renderer.Init(); nil != err {
		p.Deinit()
		return fmt.Errorf("unable to prepare terminal: %w", err)
	}
	p.Resize()

	p.Renderer.RenderLoop(func(frame uint64) bool {
		cont := p.Update()
		p.Render(frame)
		return cont
	}, func(renderDuration time.Duration) {
		p.renderTime = renderDuration
	})

	if err := p.Renderer.Deinit(); nil != err {
		log.WithError(err).Warn("unable to restore terminal")
	}
	defer p.Deinit()

	if nil != p.err {
		return p.err
	}
	return p.Finish()
}
