package main

import (
	"context"
	"fmt"
	"github.com/alecthomas/kong"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"os"
	"os/signal"
	"runtime"
	"scf/finder"
	"scf/geometry"
	"scf/importing"
	"scf/index"
	ownIo "scf/io"
	"scf/matching"
	"scf/shape"
	"scf/storage"
	"scf/web"
	"strconv"
	"strings"
	"time"
)

const VERSION = "v0.1.0"

var cli struct {
	Logging string      `help:"Logging verbosity." enum:"info,debug,trace" short:"l" default:"info"`
	Version VersionFlag `help:"Print version information and quit" name:"version" short:"v"`
	Db      string      `help:"The SQLite database file." placeholder:"<db-file>" env:"SCF_DB" default:"scf.db"`
	Import  struct {
		Input string `help:"The input file. Either a CSV file with 'id,latitude,longitude[,name]' rows, .osm or .osm.pbf." placeholder:"<input-file>" arg:"" type:"existingfile"`
		Tag   string `help:"Tag filter for OSM files, e.g. 'shop=supermarket' or 'shop'." placeholder:"<key[=value]>"`
		Ways  bool   `help:"Also import matching OSM ways (e.g. shop buildings) located at their centroid. Keeps all node locations in memory."`
	} `cmd:"" help:"Imports stores from the given file into the database."`
	ImportSvg struct {
		Input string `help:"The SVG file. Each circle becomes a template point." placeholder:"<svg-file>" arg:"" type:"existingfile"`
		Name  string `help:"Name of the template." required:""`
	} `cmd:"" name:"import-svg" help:"Converts the circles of an SVG drawing into a template and prints it as YAML."`
	Find struct {
		Templates     string        `help:"YAML file with the templates to search for." placeholder:"<yaml-file>" type:"existingfile" required:""`
		Tolerance     float64       `help:"Maximum distance between a projected point and a store." default:"25"`
		Metric        string        `help:"Distance metric. Haversine distances are in miles." enum:"haversine,planar" default:"haversine"`
		Boundary      string        `help:"Search area: 'us', 'auto' (bounding box of all stores), 'none' or 'minLon,minLat,maxLon,maxLat'." default:"us"`
		MinSize       float64       `help:"Minimum size of the bounding box diagonal of a constellation." default:"0"`
		GrowMinSize   bool          `help:"Raise the minimum size to each found constellation per anchor and template."`
		Workers       int           `help:"Number of concurrent workers." default:"${workers}"`
		Checker       string        `help:"Name stored with each processed anchor." env:"PROCESSOR_NAME" default:"local"`
		PointsFile    string        `help:"Additionally append found constellations as 'name,id1,id2,...' lines to this file." placeholder:"<file>"`
		AnchorTimeout time.Duration `help:"Maximum time spent on one anchor, zero means no limit." default:"0s"`
		ProgressEvery int           `help:"Log progress after this many checked combinations." default:"1000000"`
		Index         string        `help:"Spatial index used for nearest store lookups." enum:"kdtree,grid" default:"kdtree"`
		CellSize      float64       `help:"Cell width and height of the grid index in coordinate units." default:"0.5"`
	} `cmd:"" help:"Searches constellations using all unprocessed stores as first anchor."`
	Export struct {
		Output string `help:"The GeoJSON output file." placeholder:"<output-file>" arg:""`
	} `cmd:"" help:"Writes all found constellations to a GeoJSON file."`
	Serve struct {
		Port      string  `help:"The port to listen on." default:"8080"`
		Templates string  `help:"YAML file with the templates used for matching." placeholder:"<yaml-file>" type:"existingfile" required:""`
		Tolerance float64 `help:"Maximum distance between a projected point and a store." default:"25"`
		Metric    string  `help:"Distance metric. Haversine distances are in miles." enum:"haversine,planar" default:"haversine"`
	} `cmd:"" help:"Starts the HTTP API."`
}

type VersionFlag string

func (v VersionFlag) Decode(ctx *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                         { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

func main() {
	ctx := kong.Parse(
		&cli,
		kong.Name("Store constellation finder"),
		kong.Description("Finds groups of stores forming the shape of given templates."),
		kong.Vars{
			"version": VERSION,
			"workers": strconv.Itoa(runtime.NumCPU()),
		},
	)

	if strings.ToLower(cli.Logging) == "debug" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_DEBUG)
	} else if strings.ToLower(cli.Logging) == "trace" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)
	} else if strings.ToLower(cli.Logging) == "info" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_INFO)
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
	} else {
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
		sigolo.Fatalf("Unknown logging level '%s'", cli.Logging)
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch ctx.Command() {
	case "import <input>":
		err := withDatabase(cli.Db, func(db *storage.Store) error {
			options := importing.Options{TagFilter: cli.Import.Tag, Ways: cli.Import.Ways}
			_, err := importing.Import(signalCtx, cli.Import.Input, options, db)
			return err
		})
		sigolo.FatalCheck(err)
	case "import-svg <input>":
		template, err := ownIo.ReadSvgTemplateFile(cli.ImportSvg.Input, cli.ImportSvg.Name)
		sigolo.FatalCheck(err)

		err = ownIo.WriteTemplatesYaml([]*shape.Template{template}, os.Stdout)
		sigolo.FatalCheck(err)
	case "find":
		err := withDatabase(cli.Db, func(db *storage.Store) error {
			return find(signalCtx, db)
		})
		sigolo.FatalCheck(err)
	case "export <output>":
		err := withDatabase(cli.Db, func(db *storage.Store) error {
			return export(signalCtx, db, cli.Export.Output)
		})
		sigolo.FatalCheck(err)
	case "serve":
		err := withDatabase(cli.Db, func(db *storage.Store) error {
			return serve(signalCtx, db)
		})
		sigolo.FatalCheck(err)
	default:
		sigolo.Errorf("Unknown command '%s'", ctx.Command())
	}
}

// withDatabase runs the action on the opened database. The database is closed before returning, also when the action
// failed.
func withDatabase(filename string, action func(db *storage.Store) error) error {
	db, err := storage.Open(filename)
	if err != nil {
		return err
	}

	err = action(db)
	closeErr := db.Close()
	if err != nil {
		return err
	}
	return closeErr
}

func export(ctx context.Context, db *storage.Store, outputFile string) error {
	constellations, err := db.Constellations(ctx)
	if err != nil {
		return err
	}

	err = ownIo.WriteConstellationsAsGeoJsonFile(constellations, outputFile)
	if err != nil {
		return err
	}

	sigolo.Infof("Exported %d constellations to %s", len(constellations), outputFile)
	return nil
}

func serve(ctx context.Context, db *storage.Store) error {
	metric, err := geometry.ParseMetric(cli.Serve.Metric)
	if err != nil {
		return err
	}

	config := finder.Config{Matching: matching.DefaultConfig()}
	config.Matching.Tolerance = cli.Serve.Tolerance
	config.Matching.Metric = metric
	config.Matching.Boundary = nil

	f, err := finder.New(ctx, config, db, ownIo.TemplateFile(cli.Serve.Templates), db, db)
	if err != nil {
		return err
	}

	return web.StartServer(cli.Serve.Port, web.NewRouter(f, db))
}

func find(ctx context.Context, db *storage.Store) error {
	stores, err := db.Stores(ctx)
	if err != nil {
		return err
	}

	metric, err := geometry.ParseMetric(cli.Find.Metric)
	if err != nil {
		return err
	}

	boundary, err := parseBoundary(cli.Find.Boundary, stores)
	if err != nil {
		return err
	}

	config := finder.Config{
		Matching: matching.Config{
			Tolerance:   cli.Find.Tolerance,
			Boundary:    boundary,
			MinimumSize: cli.Find.MinSize,
			Metric:      metric,
		},
		Index: index.Config{
			Type:     cli.Find.Index,
			CellSize: cli.Find.CellSize,
		},
		GrowMinimumSize: cli.Find.GrowMinSize,
		Workers:         cli.Find.Workers,
		CheckerName:     cli.Find.Checker,
		AnchorTimeout:   cli.Find.AnchorTimeout,
		ProgressEvery:   cli.Find.ProgressEvery,
	}

	var sink finder.Sink = db
	if cli.Find.PointsFile != "" {
		pointsFile, err := ownIo.OpenPointsFile(cli.Find.PointsFile)
		if err != nil {
			return err
		}
		defer pointsFile.Close()
		sink = finder.MultiSink{db, pointsFile}
	}

	f, err := finder.New(ctx, config, finder.StaticStores(stores), ownIo.TemplateFile(cli.Find.Templates), sink, db)
	if err != nil {
		return err
	}

	err = f.Run(ctx)
	if err != nil {
		return err
	}

	processed, err := db.ProcessedCount(ctx)
	if err != nil {
		return err
	}
	sigolo.Infof("Found %d constellations, %d of %d stores are processed", f.Stats().Matches(), processed, len(stores))
	return nil
}

func parseBoundary(value string, stores []geometry.Point) (*orb.Bound, error) {
	switch strings.ToLower(value) {
	case "none":
		return nil, nil
	case "us":
		bound := geometry.ContinentalUS
		return &bound, nil
	case "auto":
		bound, ok := geometry.BoundOf(stores)
		if !ok {
			return nil, errors.New("Unable to determine boundary without stores")
		}
		return &bound, nil
	}

	bound, err := geometry.ParseBound(value)
	if err != nil {
		return nil, err
	}
	return &bound, nil
}
