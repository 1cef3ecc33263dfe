package main

import (
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"vellum/internal/server"
)

func main() {
	configPath := flag.String("config", "vellum.yaml", "path to the configuration file")
	verbosity := flag.Int("verbosity", 1, "log verbosity")
	flag.Parse()

	commonlog.Configure(*verbosity, nil)

	logsDir := filepath.Join(os.TempDir(), "vellum")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		log.Fatalf("Failed to create logs directory: %v", err)
	}

	logFile, err := os.OpenFile(
		filepath.Join(logsDir, "vellum.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()

	log.SetOutput(io.MultiWriter(os.Stderr, logFile))
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	log.Println("Starting vellum language server...")

	config, err := server.LoadConfigFile(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lspServer, _ := server.NewServer(config)
	if err := lspServer.RunStdio(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
