package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"dxflaser/pkg/dxf"
	"dxflaser/pkg/entity"
	"dxflaser/pkg/gcode"
	"dxflaser/pkg/geometry"
)

func main() {
	defaults := gcode.DefaultConfig()

	feed := pflag.Float64("feed", defaults.FeedRate, "cutting feed rate, mm/min")
	power := pflag.Float64("power", defaults.LaserPower, "laser power for cutting moves")
	maxX := pflag.Float64("max-x", defaults.MaxWorkspaceX, "workspace width, mm")
	maxY := pflag.Float64("max-y", defaults.MaxWorkspaceY, "workspace height, mm")
	cuttingZ := pflag.Float64("cutting-z", defaults.CuttingZ, "Z height carried on repositioning moves")
	raiseZ := pflag.Float64("raise-z", defaults.RaiseZ, "Z height for raises between entities")
	offsetX := pflag.Float64("offset-x", 0, "X offset applied to all geometry, mm")
	offsetY := pflag.Float64("offset-y", 0, "Y offset applied to all geometry, mm")
	header := pflag.String("header", defaults.Header, "program header, emitted verbatim")
	footer := pflag.String("footer", defaults.Footer, "program footer, emitted verbatim")
	optimize := pflag.Bool("optimize", true, "reorder entities to shorten travel")
	raiseBetween := pflag.Bool("raise-between-paths", false, "raise Z between entities")
	out := pflag.String("out", "", "output file (default: input with .gcode suffix)")
	configFile := pflag.String("config", "", "settings file (yaml/json/toml), overridden by flags")
	pflag.Parse()

	if pflag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] dxf-file\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(2)
	}
	input := pflag.Arg(0)

	config := defaults
	if *configFile != "" {
		if err := loadConfigFile(*configFile, &config); err != nil {
			log.Fatalf("config error: %s", err)
		}
	}
	// Flags given on the command line beat the settings file.
	changed := pflag.CommandLine.Changed
	if changed("feed") {
		config.FeedRate = *feed
	}
	if changed("power") {
		config.LaserPower = *power
	}
	if changed("max-x") {
		config.MaxWorkspaceX = *maxX
	}
	if changed("max-y") {
		config.MaxWorkspaceY = *maxY
	}
	if changed("cutting-z") {
		config.CuttingZ = *cuttingZ
	}
	if changed("raise-z") {
		config.RaiseZ = *raiseZ
	}
	if changed("header") {
		config.Header = *header
	}
	if changed("footer") {
		config.Footer = *footer
	}
	if changed("optimize") {
		config.OptimizeRoute = *optimize
	}
	if changed("raise-between-paths") {
		config.RaiseBetweenPaths = *raiseBetween
	}
	if err := config.Validate(); err != nil {
		log.Fatalf("config error: %s", err)
	}

	f, err := os.Open(input)
	if err != nil {
		log.Fatalf("file read error: %s", err)
	}
	extraction, err := dxf.Extract(f)
	f.Close()
	if err != nil {
		log.Fatalf("extract error: %s", err)
	}
	for _, w := range extraction.Warnings {
		log.Printf("warning: %s", w)
	}
	log.Printf("units: %s, %d entities", extraction.Units, len(extraction.Entities))

	sel := entity.NewSelection()
	for _, e := range extraction.Entities {
		if e.Cuttable() {
			sel.SetEngrave(e.ID)
		}
	}

	program, stats := gcode.Compile(extraction.Entities, sel,
		geometry.Point{X: *offsetX, Y: *offsetY}, config)

	output := *out
	if output == "" {
		output = strings.TrimSuffix(input, ".dxf") + ".gcode"
	}
	if err := ioutil.WriteFile(output, []byte(program), 0644); err != nil {
		log.Fatalf("file write error: %s", err)
	}

	log.Printf("engraved %d, clipped out %d, removed %d", stats.Engraved, stats.ClippedOut, stats.Removed)
	log.Printf("travel %.1fmm -> %.1fmm", stats.TravelBefore, stats.TravelAfter)
	log.Printf("wrote %s", output)
}

// loadConfigFile fills config from a settings file. Keys mirror the flag
// names. Missing keys keep their defaults.
func loadConfigFile(path string, config *gcode.Config) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	set := func(key string, dst *float64) {
		if v.IsSet(key) {
			*dst = v.GetFloat64(key)
		}
	}
	set("feed", &config.FeedRate)
	set("power", &config.LaserPower)
	set("max-x", &config.MaxWorkspaceX)
	set("max-y", &config.MaxWorkspaceY)
	set("cutting-z", &config.CuttingZ)
	set("raise-z", &config.RaiseZ)
	if v.IsSet("header") {
		config.Header = v.GetString("header")
	}
	if v.IsSet("footer") {
		config.Footer = v.GetString("footer")
	}
	if v.IsSet("optimize") {
		config.OptimizeRoute = v.GetBool("optimize")
	}
	if v.IsSet("raise-between-paths") {
		config.RaiseBetweenPaths = v.GetBool("raise-between-paths")
	}
	return nil
}

