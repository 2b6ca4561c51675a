package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "Lists stations, sorted by name",
	Args:  cobra.NoArgs,
	RunE:  stations,
}

func init() {
	rootCmd.AddCommand(stationsCmd)
}

func stations(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	stations, fallback := newManager(cfg, nil).Stations(context.Background())
	if fallback {
		fmt.Println("(static data unavailable, showing fallback stations)")
	}

	for _, station := range stations {
		fmt.Printf("%s: %s [%s]\n", station.ID, station.Name, strings.Join(station.Lines, ", "))
	}

	return nil
}
