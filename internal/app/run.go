package app

import (
	"io"
	"log/slog"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"github.com/Navyasribhaskar/Casestudy/scorer"
)

const fyneAppID = "casestudy.transcriptscorer"

// Run loads the configuration and starts the desktop UI.
func Run(configPath string) error {
	cfg, err := scorer.LoadConfig(configPath)
	if err != nil {
		return err
	}

	sink := newLogSink()
	logger := slog.New(slog.NewTextHandler(io.MultiWriter(os.Stderr, sink), &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))

	svc := NewService(configPath, cfg, logger)
	defer svc.Close()

	a := fyneapp.NewWithID(fyneAppID)
	u := buildUI(a, svc, sink)
	go u.warmUp()
	u.w.ShowAndRun()
	return nil
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
