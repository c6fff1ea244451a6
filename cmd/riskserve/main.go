/*
Package main implements the disease risk assessment server and CLI application.

RiskServe scores every disease in a symptom database against a patient's
reported symptom set, ranks the candidates deterministically and generates
follow-up questions targeting the symptoms that would most sharpen the
ranking. It can operate as a msgpack IPC server for integration with
assistant frontends, or as a CLI application for testing and debugging.

The disease database is loaded once at startup and indexed in memory. Symptom
weights follow an inverse disease frequency scheme: rarer symptoms carry more
diagnostic signal. A corpus reload swaps the index and the weight table
atomically, so in-flight assessments never observe a partial update.

# Usage

Start the server with default settings:

	riskserve

Use a custom disease database and enable debug mode:

	riskserve -data /path/to/diseases.json -d

Run in CLI mode for interactive testing:

	riskserve -c -top 5 -questions 3

The database is a JSON file of disease records with their symptom lists, or a
compiled .bin snapshot produced by the corpus package.

# Configuration

Runtime configuration is managed through a TOML file:

	[engine]
	top_n = 10
	max_questions = 5

	[server]
	max_symptoms = 128
	max_limit = 64

The config file is automatically created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via msgpack over stdin/stdout. Assessment requests
are processed synchronously with microsecond timing information included in
responses.

Send an assessment request:

	{"id": "req1", "s": ["sym_fever", "sym_cough"], "n": 10}

Receive ranked risks with follow-up questions:

	{"id": "req1", "risks": [{"d": "dis_flu", "r": 0.42, "c": "low"}], "qs": [...], "c": 1, "t": 180}

See pkg/server for the full message reference.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/carewise/riskserve/internal/cli"
	"github.com/carewise/riskserve/pkg/config"
	"github.com/carewise/riskserve/pkg/corpus"
	"github.com/carewise/riskserve/pkg/risk"
	"github.com/carewise/riskserve/pkg/server"
)

const (
	Version = "0.3.0"
	AppName = "riskserve"
	gh      = "https://github.com/carewise/riskserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	// custom Flags
	showVersion := flag.Bool("version", false, "Show current version")
	dataPath := flag.String("data", defaultConfig.Corpus.Path, "Disease database file (.json or compiled .bin)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	topN := flag.Int("top", defaultConfig.CLI.DefaultTopN, "Number of ranked diseases to return")
	questions := flag.Int("questions", defaultConfig.CLI.DefaultQuestions, "Maximum follow-up questions per assessment")
	noResolve := flag.Bool("no-resolve", defaultConfig.CLI.DefaultNoResolve, "Disable symptom name resolution (DBG only) - input tokens are treated as raw IDs")
	configPathFlag := flag.String("config", "", "Custom config file path")

	flag.Parse()

	if *showVersion {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
			Prefix:          "",
		})

		styles := log.DefaultStyles()

		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

		logger.SetStyles(styles)

		logger.Print("")
		logger.Print("[ RiskServe ] Symptom-weighted disease risk ranking & active inquiry")
		logger.Print("", "version", Version)
		logger.Print("")
		logger.Print("use -h or --help to see available options")
		logger.Print("Github Repo", "gh", gh)

		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, configPath, err := config.LoadConfigWithPriority(*configPathFlag)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
		os.Exit(1)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(configPath))

	corpusPath := *dataPath
	log.Debugf("Loading disease database from: %s", corpusPath)

	c, err := corpus.LoadFile(corpusPath)
	if err != nil {
		log.Fatalf("Failed to load disease database: %v", err)
		os.Exit(1)
	}

	engine, err := risk.NewEngine(c)
	if err != nil {
		log.Fatalf("Failed to init engine: %v", err)
		os.Exit(1)
	}
	log.Debug("Engine init done")

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:",
			"topN", *topN,
			"questions", *questions,
			"noResolve", *noResolve)

		inputHandler := cli.NewInputHandler(engine, *topN, *questions, *noResolve)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
			os.Exit(1)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(engine, appConfig, configPath, corpusPath)

	showStartupInfo(corpusPath, engine)

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(corpusPath string, engine *risk.Engine) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	stats := engine.Stats()

	println("===========")
	println(" RiskServe ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("database: ( %s )", corpusPath)
	log.Infof("diseases: %d, symptoms: %d", stats["diseases"], stats["symptoms"])
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
