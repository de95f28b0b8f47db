package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	yml "gopkg.in/yaml.v2"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "dwfsweep.yml"
	k              = koanf.New(".")
)

func setupconfig() {
	k.Load(structs.Provider(DefaultConfig(), "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `dwfsweep runs voltage sweeps on a Digilent pod and records the transfer
curve of the circuit on its scope channels.  It can also serve the bench over
HTTP for clients in any programming language.

Usage:
	dwfsweep <command>

Commands:
	run
	serve
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `dwfsweep is amenable to configuration via its .yaml file.  For a primer on
YAML, see https://yaml.org/start.html

Without a configuration, run performs a simulated sweep of the negative rail,
-5 V to 0 V and back in 50 mV steps, and writes sweep.csv, timeseries.png and
transfer.png to the working directory.

Set Mock: false to drive real hardware.  That requires the Digilent waveforms
runtime on the library path and a binary built with -tags dwf; the first
device on the bus is used.

Channels are one-based: Sweep.DriveChannel addresses the generator,
InputChannel and OutputChannel address the scope.  The rails under Supplies
are clamped to [0, 5] and [-5, 0] volts.

The serve command exposes each instrument under its own stem:
	/scope, /funcgen, /supplies, /sweep
GET /endpoints lists every route as JSON.`
	fmt.Println(str)
}

func mkconf() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := Config{}
	k.Unmarshal("", &c)
	err := yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("dwfsweep version %v\n", Version)
}

func run() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	b, err := OpenBench(c)
	if err != nil {
		log.Fatal(err)
	}
	err = RunSweep(c, b)
	if cerr := b.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatal(err)
	}
}

func serve() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	b, err := OpenBench(c)
	if err != nil {
		log.Fatal(err)
	}
	defer b.Close()
	mux := BuildMux(b)
	log.Println("now listening for requests at ", c.Addr)
	log.Fatal(http.ListenAndServe(c.Addr, mux))
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "run":
		run()
		return
	case "serve":
		serve()
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
