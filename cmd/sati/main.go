package main

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/ayoisaiah/sati/app"
	"github.com/ayoisaiah/sati/internal/config"
	"github.com/ayoisaiah/sati/internal/logutil"
	"github.com/ayoisaiah/sati/internal/osutil"
	"github.com/ayoisaiah/sati/internal/static"
)

func run(args []string) error {
	config.InitializePaths()

	logutil.Init(config.LogFilePath())

	err := os.MkdirAll(config.SoundsDirPath(), osutil.DirPermission)
	if err != nil {
		return err
	}

	if err := static.Init(); err != nil {
		return err
	}

	return app.Get().Run(args)
}

func main() {
	err := run(os.Args)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(int(osutil.ExitError))
	}
}
