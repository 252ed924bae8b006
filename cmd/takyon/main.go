package main

import (
	"flag"
	"log"
	"os"

	takyon "github.com/aaratha/takyon"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 44800, "output sample rate")
		maxVoices  = flag.Int("max-voices", 32, "fixed voice pool size")
		prelude    = flag.String("prelude", "", "inline Lua run before the script path")
	)
	flag.Parse()

	opts := []takyon.Option{
		takyon.WithSampleRate(*sampleRate),
		takyon.WithMaxVoices(*maxVoices),
	}
	if *prelude != "" {
		opts = append(opts, takyon.WithRuntimePrelude(*prelude))
	}
	if path := flag.Arg(0); path != "" {
		opts = append(opts, takyon.WithScriptPath(path))
	}

	engine, err := takyon.New(opts...)
	if err != nil {
		log.Fatal(err)
	}
	engine.Play()
	defer engine.Stop()

	engine.REPL(os.Stdin, os.Stdout)
}
