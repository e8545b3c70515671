package main

import (
	"embed"
	"flag"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/p2ppsr/metanet-desktop/internal/config"
	ilog "github.com/p2ppsr/metanet-desktop/internal/log"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	configPath := flag.String("config", "metanet-desktop.yaml", "configuration file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		ilog.L().Fatal().Err(err).Str("path", *configPath).Msg("load configuration")
	}
	ilog.Setup(ilog.Options{Level: cfg.Log.Level, Writers: cfg.Log.Writer, File: cfg.Log.File})

	app := NewApp(cfg)

	err = wails.Run(&options.App{
		Title:  "Metanet Desktop",
		Width:  1024,
		Height: 768,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:  app.startup,
		OnShutdown: app.shutdown,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		ilog.L().Fatal().Err(err).Msg("run desktop shell")
	}
}
