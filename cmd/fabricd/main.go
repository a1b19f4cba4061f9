package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/aiverse/datafabric/cmd/fabricd/handlers"
	"github.com/aiverse/datafabric/pkg/auth"
	"github.com/aiverse/datafabric/pkg/catalog/tags"
	"github.com/aiverse/datafabric/pkg/configs/fabric"
	kpool "github.com/aiverse/datafabric/pkg/conn/postgres"
	featpg "github.com/aiverse/datafabric/pkg/domain/feature/store/postgres"
	featredis "github.com/aiverse/datafabric/pkg/domain/feature/store/redis"
	intentpg "github.com/aiverse/datafabric/pkg/domain/intent/db/postgres"
	labelpg "github.com/aiverse/datafabric/pkg/domain/label/db/postgres"
	lineagepg "github.com/aiverse/datafabric/pkg/domain/lineage/db/postgres"
	registrypg "github.com/aiverse/datafabric/pkg/domain/registry/db/postgres"
	stagingfs "github.com/aiverse/datafabric/pkg/domain/staging/fs"
	versionpg "github.com/aiverse/datafabric/pkg/domain/version/db/postgres"
	"github.com/aiverse/datafabric/pkg/mcop/cards"
	"github.com/aiverse/datafabric/pkg/mcop/dispatch"
	"github.com/aiverse/datafabric/pkg/observability/signals"
	"github.com/aiverse/datafabric/pkg/ratelimit"
	"github.com/aiverse/datafabric/pkg/source/local"
	"github.com/aiverse/datafabric/pkg/unit"
)

func main() {
	configPath := flag.String("config-path", "", "fabricd config path")
	flag.Parse()

	config, err := fabric.Load(*configPath)
	if err != nil {
		log.Fatalf("can not read configuration: %s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := kpool.Connect(ctx, config.DBURI)
	if err != nil {
		log.Fatalf("can not connect to database: %s", err)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	defer redisClient.Close()

	// stores
	registryStore := registrypg.New(pool)
	intentStore := intentpg.New(pool)
	versionStore := versionpg.New(pool)
	lineageStore := lineagepg.New(pool)
	labelStore := labelpg.New(pool)
	offlineStore := featpg.New(pool)
	onlineStore := featredis.New(redisClient)
	stagingStore := stagingfs.New(
		config.Staging.Root, stagingfs.WithQuota(config.Staging.QuotaBytes),
	)

	// external-source adapters
	sourceRoot := config.Sources.StorageRoot
	credentials := local.Credentials{Path: config.Sources.CredentialsPath}
	driver := local.Driver{Root: sourceRoot}
	sourceReader := local.Reader{Root: sourceRoot}
	schemaReader := local.SchemaReader{Root: sourceRoot}
	storage := local.Storage{Root: sourceRoot}
	environments := local.Environments{IDs: config.Sources.Environments}
	prober := local.Prober{Root: sourceRoot}
	labelSchemas := local.LabelSchemas{Root: sourceRoot}
	samples := local.Samples{Storage: storage}

	units := unit.NewRegistry(
		unit.DataAssetRegistrar{Registry: registryStore, Tags: tags.Standard()},
		unit.ConnectionProbe{Credentials: credentials, Driver: driver},
		unit.SchemaIntrospector{Schemas: schemaReader},
		unit.DataExtractor{Source: sourceReader, Staging: stagingStore},
		unit.DataWriter{Staging: stagingStore, Registry: registryStore, Storage: storage},
		unit.TransformExecutor{Staging: stagingStore},
		unit.DataJoiner{Staging: stagingStore},
		unit.AggregationComputer{Staging: stagingStore},
		unit.FeatureComputer{Staging: stagingStore},
		unit.FeatureStoreWriter{Staging: stagingStore, Online: onlineStore, Offline: offlineStore},
		unit.FeatureRetriever{Online: onlineStore, Offline: offlineStore},
		unit.DataProfiler{Staging: stagingStore},
		unit.SchemaValidator{Staging: stagingStore},
		unit.DataCommitter{Registry: registryStore, Storage: storage, Versions: versionStore},
		unit.BranchCreator{Versions: versionStore},
		unit.MergeComputer{Versions: versionStore},
		unit.DataReplicator{Storage: storage},
		unit.LocalitySignalGenerator{Registry: registryStore, Environments: environments, Prober: prober},
		unit.LabelTaskCreator{Registry: registryStore, Schemas: labelSchemas, Samples: samples, Labels: labelStore},
		unit.LabelRecorder{Labels: labelStore, Schemas: labelSchemas},
		unit.LineageEdgeWriter{Lineage: lineageStore},
		unit.QualityGateEvaluator{Staging: stagingStore},
	)

	// capability cards with hot reload
	cardProvider, err := cards.NewProvider(config.Cards.Dir)
	if err != nil {
		log.Fatalf("can not load registry cards: %s", err)
	}
	go func() {
		err := cardProvider.Watch(ctx, func(err error) {
			log.Printf("registry cards reload: %s", err)
		})
		if err != nil && ctx.Err() == nil {
			log.Printf("registry cards watch stopped: %s", err)
		}
	}()

	// feedback signals
	signalRegistry, err := signals.LoadRegistry(config.Signals.Dir)
	if err != nil {
		log.Fatalf("can not load signal definitions: %s", err)
	}
	broker := signals.NewBroker()
	emitter := signals.NewEmitter(signalRegistry, broker)

	// dispatcher
	dispatcher := &dispatch.Dispatcher{
		Intents:      intentStore,
		Units:        units,
		Signals:      emitter,
		PollInterval: config.Dispatcher.PollInterval(),
		Timeout:      config.Dispatcher.Timeout(),
		Logger:       log.Default(),
	}
	go func() {
		if err := dispatcher.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("dispatcher stopped: %s", err)
		}
	}()

	// http boundary
	e := echo.New()
	e.Pre(middleware.AddTrailingSlash())
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}

	limiter := ratelimit.NewLimiter(ratelimit.Limits{
		ReadsPerMinute:   config.RateLimit.ReadsPerMinute,
		WritesPerMinute:  config.RateLimit.WritesPerMinute,
		ComputePerMinute: config.RateLimit.ComputePerMinute,
	})

	api := e.Group("/api", auth.Middleware([]byte(config.Auth.JWTKey)))
	api.GET(
		"/registry/capabilities/",
		handlers.CapabilitiesHandler(cardProvider),
		limiter.Middleware(ratelimit.Read),
	)
	api.POST(
		"/mcop/intents/",
		handlers.PostIntentHandler(intentStore, limiter),
	)
	api.GET(
		"/mcop/intents/:intentId/",
		handlers.GetIntentHandler(intentStore, "intentId"),
		limiter.Middleware(ratelimit.Read),
	)
	api.GET(
		"/mcop/executions/:executionId/",
		handlers.GetExecutionHandler(intentStore, "executionId"),
		limiter.Middleware(ratelimit.Read),
	)
	api.GET(
		"/observability/signals/",
		handlers.SignalsHandler(broker),
		limiter.Middleware(ratelimit.Read),
	)

	go func() {
		<-ctx.Done()
		graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.Shutdown(graceful); err != nil {
			log.Printf("error on shutdown: %s", err)
		}
	}()

	if err := e.Start(config.Listen); err != nil && ctx.Err() == nil {
		log.Fatalf("server stopped: %s", err)
	}
}
