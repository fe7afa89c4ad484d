// skintool inspects skinned glTF models from the command line.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/skinrig/internal/engine/importer"
	"github.com/Faultbox/skinrig/internal/engine/model"
	"github.com/Faultbox/skinrig/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "pose":
		cmdPose(args)
	case "palette":
		cmdPalette(args)
	case "weights":
		cmdWeights(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`skintool - skinned model inspector

Usage:
  skintool <command> [options]

Commands:
  info <file>                        Show nodes, meshes, bones and clip
  pose <file> <seconds>              Print node world transforms at a time
  palette <file> <seconds> [mesh]    Print the bone palette of a mesh
  weights <file> [mesh]              Show influence counts and weight sums

Options:
  -v                                 Log importer warnings to stderr

Examples:
  skintool info fox.glb
  skintool pose fox.glb 0.5
  skintool palette -v fox.glb 1.2 mesh_0`)
}

func parse(name string, args []string, min int, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	verbose := fs.Bool("v", false, "Log importer warnings")
	fs.Parse(args)

	if fs.NArg() < min {
		fmt.Fprintln(os.Stderr, "Usage: skintool "+usage)
		os.Exit(1)
	}
	if *verbose {
		if err := logger.Init("debug", ""); err != nil {
			fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		}
	}
	return fs
}

func load(path string) *model.Asset {
	asset, err := importer.Load(path, importer.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return asset
}

func seconds(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: bad time %q: %v\n", s, err)
		os.Exit(1)
	}
	return v
}

func emit(v any) {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	enc.Close()
}

func cmdInfo(args []string) {
	fs := parse("info", args, 1, "info <file>")
	emit(infoReport(load(fs.Arg(0))))
}

func cmdPose(args []string) {
	fs := parse("pose", args, 2, "pose <file> <seconds>")
	emit(poseReport(load(fs.Arg(0)), seconds(fs.Arg(1))))
}

func cmdPalette(args []string) {
	fs := parse("palette", args, 2, "palette <file> <seconds> [mesh]")
	rep, err := paletteReport(load(fs.Arg(0)), seconds(fs.Arg(1)), fs.Arg(2))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	emit(rep)
}

func cmdWeights(args []string) {
	fs := parse("weights", args, 1, "weights <file> [mesh]")
	emit(weightsReport(load(fs.Arg(0)), fs.Arg(1)))
}
