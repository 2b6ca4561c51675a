package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tidbyt.dev/tram/model"
)

var arrivalsCmd = &cobra.Command{
	Use:   "arrivals <station_id>",
	Short: "Lists upcoming arrivals at a station",
	Args:  cobra.ExactArgs(1),
	RunE:  arrivals,
}

var linesCmd = &cobra.Command{
	Use:   "lines <station_id>",
	Short: "Lists lines and destinations currently serving a station",
	Args:  cobra.ExactArgs(1),
	RunE:  lines,
}

var (
	line      string
	direction string
)

func init() {
	arrivalsCmd.Flags().StringVarP(&line, "line", "l", "", "Restrict to a specific line")
	arrivalsCmd.Flags().StringVarP(&direction, "direction", "d", "", "Restrict to a specific destination")
	rootCmd.AddCommand(arrivalsCmd)
	rootCmd.AddCommand(linesCmd)
}

func arrivals(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	result := newManager(cfg, nil).Arrivals(
		context.Background(),
		args[0],
		model.WidgetFilter{Line: line, Direction: direction},
	)
	if result.Fallback {
		fmt.Printf("(showing sample arrivals: %s)\n", result.Err)
	}

	for _, a := range result.List {
		fmt.Printf("%s %s %s\n", a.Line, a.Time, a.Destination)
	}

	return nil
}

func lines(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	for _, ld := range newManager(cfg, nil).AvailableLines(context.Background(), args[0]) {
		fmt.Printf("%s %s\n", ld.Line, ld.Destination)
	}

	return nil
}
