// Command wmprobe prints image dimensions and formats
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alexflint/go-arg"
	log "github.com/sirupsen/logrus"

	"github.com/denysvitali/picmark/pkg/watermark"
)

// Args defines the command line arguments
type Args struct {
	Files    []string      `arg:"positional,required" help:"image files to probe"`
	Timeout  time.Duration `arg:"-t" default:"5s" help:"give up on a file after this long"`
	LogLevel string        `arg:"-l" default:"info" help:"log level (debug, info, warn, error)"`
}

func (Args) Description() string {
	return "wmprobe reports width, height and format of images, rejecting corrupt files"
}

func initLogger(args Args) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	level, err := log.ParseLevel(args.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func probeFile(path string, timeout time.Duration) (watermark.Dimensions, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return watermark.ProbeFile(ctx, path)
}

func main() {
	var args Args
	arg.MustParse(&args)

	initLogger(args)

	failed := 0
	for _, file := range args.Files {
		dims, err := probeFile(file, args.Timeout)
		if err != nil {
			failed++
			log.WithError(err).WithField("file", file).Error("Failed to probe image")
			continue
		}
		log.WithFields(log.Fields{
			"file":   file,
			"width":  dims.Width,
			"height": dims.Height,
			"format": dims.Format,
		}).Debug("Probed image")
		fmt.Printf("%s\t%d\t%d\t%s\t%s\n", file, dims.Width, dims.Height, dims.Format, watermark.MimeType(file))
	}

	if failed > 0 {
		os.Exit(1)
	}
}
