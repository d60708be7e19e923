package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/helloneige/neige/internal/bus"
	"github.com/helloneige/neige/internal/infoneige"
	"github.com/helloneige/neige/internal/planning"
	"github.com/helloneige/neige/internal/server"
	"github.com/helloneige/neige/internal/store"
)

// Options defines all CLI flags and env vars for the neige server.
// Flags: --host, --port, --data-dir, --nominatim-url, --infoneige-token
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, ...
type Options struct {
	Host           string `doc:"Host to bind to" default:"0.0.0.0"`
	Port           int    `doc:"Port to listen on" short:"p" default:"8086"`
	DataDir        string `doc:"Directory for data files" default:".data"`
	NominatimURL   string `doc:"Nominatim base URL (empty for the public instance)" default:""`
	InfoneigeToken string `doc:"InfoNeige API token" default:""`
	InfoneigeURL   string `doc:"InfoNeige endpoint (empty for production)" default:""`
	Debug          bool   `doc:"Enable debug logging" default:"false"`
}

func newLogger(opts *Options) zerolog.Logger {
	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func newServer(opts *Options) (*server.Server, zerolog.Logger, error) {
	logger := newLogger(opts)
	srv, err := server.New(server.Config{
		Host:         opts.Host,
		Port:         fmt.Sprintf("%d", opts.Port),
		DataDir:      opts.DataDir,
		NominatimURL: opts.NominatimURL,
	}, logger)
	return srv, logger, err
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		srv, logger, err := newServer(opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error starting server: %v\n", err)
			os.Exit(1)
		}

		hooks.OnStart(func() {
			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			logger.Info().
				Str("server", baseURL).
				Str("data", opts.DataDir).
				Str("docs", baseURL+"/docs").
				Msg("neige API server starting")

			if err := http.ListenAndServe(addr, srv); err != nil {
				logger.Fatal().Err(err).Msg("server error")
			}
		})
		hooks.OnStop(func() {
			srv.Close()
		})
	})

	cli.Root().Use = "neige"
	cli.Root().Short = "Montreal snow-removal tracking service"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv, _, err := newServer(opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			defer srv.Close()
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import city datasets",
	}

	// import planifications: fetch InfoNeige records and upsert them
	planifCmd := &cobra.Command{
		Use:   "planifications",
		Short: "Fetch InfoNeige planifications and update street states",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			fileCfg := loadConfigFlag(cmd)

			token := opts.InfoneigeToken
			if token == "" {
				token = os.Getenv("INFONEIGE_TOKEN")
			}
			if token == "" {
				token = fileCfg.InfoneigeToken
			}
			if token == "" {
				fmt.Fprintln(os.Stderr, "Error: InfoNeige token required (--infoneige-token, INFONEIGE_TOKEN or config file)")
				os.Exit(1)
			}
			endpoint := opts.InfoneigeURL
			if endpoint == "" {
				endpoint = fileCfg.InfoneigeURL
			}

			srv, logger, err := newServer(opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			defer srv.Close()

			days, _ := cmd.Flags().GetInt("days")
			geobasePath, _ := cmd.Flags().GetString("geobase")
			if geobasePath == "" {
				geobasePath = fileCfg.GeobasePath
			}

			ctx := context.Background()
			client := infoneige.NewClient(token, endpoint, logger)
			batch, err := client.GetPlanificationsForDate(ctx, time.Now().AddDate(0, 0, -days))
			if err != nil {
				logger.Fatal().Err(err).Msg("failed to fetch planifications")
			}

			var geobase map[int64]planning.StreetRow
			if geobasePath != "" {
				geobase, err = infoneige.LoadGeobase(geobasePath)
				if err != nil {
					logger.Fatal().Err(err).Msg("failed to load geobase")
				}
				logger.Info().Int("features", len(geobase)).Msg("geobase loaded")
			}

			streets, favorites, _, notifications := srv.Stores()
			ingestor := newIngestor(streets, favorites, notifications, srv.Bus(), logger)
			sum := ingestor.Ingest(ctx, batch, geobase)
			logger.Info().
				Int("total", sum.Total).
				Int("streets", sum.StreetsUpserted).
				Int("notifications", sum.Notifications).
				Msg("import finished")
		}),
	}
	planifCmd.Flags().Int("days", 6, "Fetch planifications changed in the last N days")
	planifCmd.Flags().String("geobase", "", "Path to the double geobase GeoJSON (gbdouble.json)")
	planifCmd.Flags().String("config", "", "YAML file with ingest settings (flags take precedence)")
	importCmd.AddCommand(planifCmd)

	// import parking: load the municipal incentive lots
	parkingCmd := &cobra.Command{
		Use:   "parking",
		Short: "Import municipal incentive parking lots",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv, logger, err := newServer(opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			defer srv.Close()

			_, _, parking, _ := srv.Stores()
			importer := infoneige.NewParkingImporter(parking, logger)

			fileCfg := loadConfigFlag(cmd)
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				file = fileCfg.ParkingFile
			}
			url, _ := cmd.Flags().GetString("url")
			if url == "" {
				url = fileCfg.ParkingURL
			}

			var n int
			if file != "" {
				n, err = importer.ImportFromFile(context.Background(), file)
			} else {
				n, err = importer.ImportFromURL(context.Background(), url)
			}
			if err != nil {
				logger.Fatal().Err(err).Msg("parking import failed")
			}
			logger.Info().Int("lots", n).Msg("municipal parking imported")
		}),
	}
	parkingCmd.Flags().String("file", "", "Import from a local GeoJSON file instead of the open-data portal")
	parkingCmd.Flags().String("url", "", "Override the open-data URL")
	parkingCmd.Flags().String("config", "", "YAML file with ingest settings (flags take precedence)")
	importCmd.AddCommand(parkingCmd)

	cli.Root().AddCommand(importCmd)

	cli.Run()
}

// loadConfigFlag reads the optional --config file; a missing flag yields
// an empty config so flag fallbacks are uniform.
func loadConfigFlag(cmd *cobra.Command) *importConfig {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return &importConfig{}
	}
	cfg, err := loadImportConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func newIngestor(streets *store.StreetStore, favorites *store.FavoriteStore, notifications *store.NotificationStore, b *bus.Bus, logger zerolog.Logger) *infoneige.Ingestor {
	return infoneige.NewIngestor(streets, favorites, notifications, b, logger)
}
