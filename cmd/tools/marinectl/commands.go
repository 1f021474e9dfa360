// cmd/tools/marinectl/commands.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/telemetry"
	"github.com/v-i-n-a-y-29/HackVeda/internal/models"
	buildoverfishingchart "github.com/v-i-n-a-y-29/HackVeda/internal/workers/overfishing/build-overfishing-chart"
	routemarineinput "github.com/v-i-n-a-y-29/HackVeda/internal/workers/orchestration/route-marine-input"
	"github.com/v-i-n-a-y-29/HackVeda/pkg/registry"
)

func telemetryCommand(a *app) *cobra.Command {
	var date string
	var stock, catch float64

	cmd := &cobra.Command{
		Use:   "telemetry",
		Short: "Check one stock/catch reading for overfishing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data := map[string]interface{}{"stock_volume": stock, "catch_volume": catch}
			if date != "" {
				data["date"] = date
			}
			return a.route(cmd, models.InputTelemetry, data)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Reading date, e.g. 2024-03")
	cmd.Flags().Float64Var(&stock, "stock", 0, "Stock volume")
	cmd.Flags().Float64Var(&catch, "catch", 0, "Catch volume")
	_ = cmd.MarkFlagRequired("stock")
	_ = cmd.MarkFlagRequired("catch")
	return cmd
}

func batchCommand(a *app) *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyze a telemetry CSV (date, stock_volume, catch_volume)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			readings, err := readCSV(cmd, csvPath)
			if err != nil {
				return err
			}
			list := make([]interface{}, len(readings))
			for i, r := range readings {
				list[i] = map[string]interface{}{
					"date":         r.Date,
					"stock_volume": r.StockVolume,
					"catch_volume": r.CatchVolume,
				}
			}
			return a.route(cmd, models.InputTelemetryBatch, map[string]interface{}{"telemetry_list": list})
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file path, or - for stdin")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

func speciesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "species <name>",
		Short: "Describe a species from the fisheries corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.route(cmd, models.InputSpeciesQuery, map[string]interface{}{
				"species": strings.Join(args, " "),
			})
		},
	}
}

func routeCommand(a *app) *cobra.Command {
	var inputType, dataJSON string

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Route a JSON payload, auto-detecting its type unless --type is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw := []byte(dataJSON)
			if dataJSON == "" || dataJSON == "-" {
				var err error
				if raw, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			var data map[string]interface{}
			if err := json.Unmarshal(raw, &data); err != nil {
				return fmt.Errorf("payload must be a JSON object: %w", err)
			}

			input := routemarineinput.InputFromMap(data)
			if inputType != "" {
				input.InputType = models.InputType(inputType)
			}
			return a.route(cmd, input.InputType, input.Data)
		},
	}

	cmd.Flags().StringVarP(&inputType, "type", "t", "", "Explicit input type: image, species_query, telemetry, telemetry_batch")
	cmd.Flags().StringVarP(&dataJSON, "data", "d", "", "JSON payload (default: read stdin)")
	return cmd
}

func chartCommand() *cobra.Command {
	var csvPath string
	var sample bool

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Build the stock/catch chart figure as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var readings []models.TelemetryReading
			switch {
			case sample:
				readings = buildoverfishingchart.SampleReadings()
			case csvPath != "":
				var err error
				if readings, err = readCSV(cmd, csvPath); err != nil {
					return err
				}
			default:
				return fmt.Errorf("one of --csv or --sample is required")
			}

			chart, err := buildoverfishingchart.Build(readings)
			if err != nil {
				return err
			}
			return writeJSON(cmd, buildoverfishingchart.Output{Chart: chart})
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file path, or - for stdin")
	cmd.Flags().BoolVar(&sample, "sample", false, "Use the built-in 24-month demonstration series")
	return cmd
}

func tasksCommand() *cobra.Command {
	var registryPath string

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the task types declared in the activity registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.Default()
			if registryPath != "" {
				reg, err = registry.LoadRegistry(registryPath)
			}
			if err != nil {
				return err
			}
			for _, t := range reg.TaskTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", "", "Registry JSON file (default: embedded registry)")
	return cmd
}

func (a *app) route(cmd *cobra.Command, inputType models.InputType, data map[string]interface{}) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
	defer cancel()

	router, cleanup, err := a.newRouter(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	var resp models.RoutedResponse
	if inputType == "" {
		resp = router.AutoRoute(ctx, data)
	} else {
		resp = router.Route(ctx, inputType, data)
	}
	if err := writeJSON(cmd, resp); err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("%s", resp.Error)
	}
	return nil
}

func readCSV(cmd *cobra.Command, path string) ([]models.TelemetryReading, error) {
	if path == "-" {
		return telemetry.ParseCSV(cmd.InOrStdin())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return telemetry.ParseCSV(f)
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
