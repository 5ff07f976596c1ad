// Package main provides the radio transcriber CLI.
//
// Usage:
//
//	transcriber [flags] <command> [args]
//
// Commands:
//
//	run      - Transcribe, segment and store audio files
//	segment  - Segment an utterance file without touching audio
//	combine  - Concatenate stored transcripts into one document
//	migrate  - Apply or roll back the catalog schema
//
// Configuration comes from the environment and an optional .env file.
package main

import (
	"os"

	"github.com/johnquangdev/radio-transcriber/cmd/transcriber/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintFail("Error: %v", err)
		os.Exit(1)
	}
}
