package httpapi

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/carefinder/backend/internal/config"
	"github.com/carefinder/backend/internal/geocode"
	"github.com/carefinder/backend/internal/http/handlers"
	"github.com/carefinder/backend/internal/http/middleware"
	"github.com/carefinder/backend/internal/location"

	_ "github.com/carefinder/backend/docs"
)

// Deps are the collaborators the HTTP layer serves from.
type Deps struct {
	Store        handlers.Pinger
	Providers    handlers.ProviderLookup
	Resolver     handlers.LocationResolver
	Geocoder     location.Geocoder
	Nearby       handlers.NearbySearcher
	Cache        geocode.Cache
	CacheBackend string
}

func Router(cfg config.Config, deps Deps, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.AdminKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = splitOrigins(cfg.CORSAllowed)
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:        deps.Store,
		Providers:    deps.Providers,
		Resolver:     deps.Resolver,
		Geocoder:     deps.Geocoder,
		Nearby:       deps.Nearby,
		Cache:        deps.Cache,
		CacheBackend: deps.CacheBackend,
		Defaults: handlers.NearbyDefaults{
			RadiusKm:      cfg.DefaultRadiusKm,
			HospitalLimit: cfg.HospitalLimit,
			DoctorLimit:   cfg.DoctorLimit,
			MaxLimit:      cfg.MaxLimit,
		},
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/location/current", h.CurrentLocation)
		api.POST("/location/reverse-geocode", h.ReverseGeocode)
		api.POST("/location/geocode", h.Geocode)

		api.GET("/nearby/hospitals", h.NearbyHospitals)
		api.GET("/nearby/doctors", h.NearbyDoctors)
		api.GET("/nearby/healthcare", h.NearbyHealthcare)

		api.GET("/providers/:id", h.GetProvider)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.GET("/geocode-cache", h.CacheStats)
		admin.DELETE("/geocode-cache", h.PurgeCache)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
