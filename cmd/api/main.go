package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/playferkeeps/vegancookingrecipes-sub000/internal/api"
	"github.com/playferkeeps/vegancookingrecipes-sub000/internal/config"
	"github.com/playferkeeps/vegancookingrecipes-sub000/internal/recipe"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (default: ./config.yaml if present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg)

	var store api.RecipeStore
	if cfg.Database.URL != "" {
		pg, err := recipe.NewPostgresStore(cfg.Database.URL, recipe.PoolOptions{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			log.WithError(err).Fatal("error creating postgres store")
		}
		defer pg.Close()
		store = pg
		log.Info("serving recipes from postgres")
	} else {
		store = recipe.NewMemoryStore(log)
		log.Info("database.url not set, serving built-in recipes")
	}

	var opts []recipe.ScalerOption
	if cfg.Scaling.StrictDecimals {
		opts = append(opts, recipe.WithStrictDecimals())
	}
	handler := api.NewHandler(store, recipe.NewScaler(opts...), log)
	handler.MaxScale = cfg.Scaling.MaxFactor
	handler.Timeout = cfg.Server.RequestTimeout

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(handler, cfg, log)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.WithField("addr", addr).Info("starting server")
	if err := r.Run(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.Level = level
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = os.Stdout
	return log
}

func newRouter(handler *api.Handler, cfg *config.Config, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(api.RequestLogger(log))

	// Configure CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", api.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", api.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/healthz", handler.Health)
	r.GET("/recipes", handler.GetRecipes)
	r.GET("/recipes/:slug", handler.GetRecipe)
	r.POST("/scale", handler.Scale)

	return r
}
