package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tidbyt.dev/tram"
	"tidbyt.dev/tram/model"
	"tidbyt.dev/tram/widget"
)

var widgetCmd = &cobra.Command{
	Use:   "widget",
	Short: "Inspects and edits widget configs (use --storage sqlite to persist)",
}

var widgetShowCmd = &cobra.Command{
	Use:   "show <widget_id>",
	Short: "Refreshes a widget and prints what it displays",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(store *widget.Store, refresher *tram.Refresher, args []string) error {
		cfg, err := store.Load(args[0])
		if err != nil {
			return err
		}
		printConfig(cfg)
		printDisplay(refresher.Refresh(context.Background(), args[0]))
		return nil
	}),
}

var widgetAddCmd = &cobra.Command{
	Use:   "add <widget_id> <station_id> <station_name>",
	Short: "Adds a stop to a widget",
	Args:  cobra.ExactArgs(3),
	RunE: withStore(func(store *widget.Store, refresher *tram.Refresher, args []string) error {
		cfg, err := store.AddStop(args[0], widget.StopConfig{
			StationID:   args[1],
			StationName: args[2],
			Filter:      model.WidgetFilter{Line: line, Direction: direction},
		})
		if err != nil {
			return err
		}
		printConfig(cfg)
		return nil
	}),
}

var widgetNextCmd = &cobra.Command{
	Use:   "next <widget_id>",
	Short: "Moves a widget to its next stop",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(store *widget.Store, refresher *tram.Refresher, args []string) error {
		_, err := store.Next(args[0])
		if err != nil {
			return err
		}
		printDisplay(refresher.Refresh(context.Background(), args[0]))
		return nil
	}),
}

var widgetPrevCmd = &cobra.Command{
	Use:   "prev <widget_id>",
	Short: "Moves a widget to its previous stop",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(store *widget.Store, refresher *tram.Refresher, args []string) error {
		_, err := store.Prev(args[0])
		if err != nil {
			return err
		}
		printDisplay(refresher.Refresh(context.Background(), args[0]))
		return nil
	}),
}

var widgetRemoveCmd = &cobra.Command{
	Use:   "remove <widget_id> <index>",
	Short: "Removes the stop at index from a widget",
	Args:  cobra.ExactArgs(2),
	RunE: withStore(func(store *widget.Store, refresher *tram.Refresher, args []string) error {
		i, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid index: %w", err)
		}
		cfg, err := store.RemoveStop(args[0], i)
		if err != nil {
			return err
		}
		printConfig(cfg)
		return nil
	}),
}

var widgetDeleteCmd = &cobra.Command{
	Use:   "delete <widget_id>",
	Short: "Deletes a widget's config",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(store *widget.Store, refresher *tram.Refresher, args []string) error {
		return store.Delete(args[0])
	}),
}

func init() {
	widgetAddCmd.Flags().StringVarP(&line, "line", "l", "", "Only show this line")
	widgetAddCmd.Flags().StringVarP(&direction, "direction", "d", "", "Only show this destination")

	widgetCmd.AddCommand(widgetShowCmd)
	widgetCmd.AddCommand(widgetAddCmd)
	widgetCmd.AddCommand(widgetNextCmd)
	widgetCmd.AddCommand(widgetPrevCmd)
	widgetCmd.AddCommand(widgetRemoveCmd)
	widgetCmd.AddCommand(widgetDeleteCmd)
	rootCmd.AddCommand(widgetCmd)
}

func withStore(run func(*widget.Store, *tram.Refresher, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, closeStore, err := newStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		refresher := tram.NewRefresher(newManager(cfg, nil), store)

		return run(store, refresher, args)
	}
}

func printConfig(cfg widget.Config) {
	if len(cfg.Stops) == 0 {
		fmt.Println("no stops configured")
		return
	}
	for i, stop := range cfg.Stops {
		marker := " "
		if i == cfg.CurrentIndex {
			marker = "*"
		}
		fmt.Printf("%s %d: %s (%s)", marker, i, stop.StationName, stop.StationID)
		if stop.Filter.Active() {
			fmt.Printf(" line=%q direction=%q", stop.Filter.Line, stop.Filter.Direction)
		}
		fmt.Println()
	}
}

func printDisplay(d tram.Display) {
	if d.StationName != "" {
		fmt.Printf("%s %s\n", d.StationName, d.Position)
	}
	if d.Message != "" {
		fmt.Println(d.Message)
	}
	if d.Hint != "" {
		fmt.Println(d.Hint)
	}
	if d.Next != "" {
		fmt.Println(d.Next)
	}
	if d.Alternate != "" {
		fmt.Println(d.Alternate)
	}
	if d.Fallback {
		fmt.Println("(sample data)")
	}
}
