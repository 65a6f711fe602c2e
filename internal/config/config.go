package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`

	GoogleMapsAPIKey   string  `mapstructure:"GOOGLE_MAPS_API_KEY"`
	GoogleGeocodeURL   string  `mapstructure:"GOOGLE_GEOCODE_URL"`
	NominatimURL       string  `mapstructure:"NOMINATIM_URL"`
	NominatimUserAgent string  `mapstructure:"NOMINATIM_USER_AGENT"`
	NominatimRPS       float64 `mapstructure:"NOMINATIM_RPS"`
	IPAPIURL           string  `mapstructure:"IP_API_URL"`

	GeocodeTimeout        time.Duration `mapstructure:"GEOCODE_TIMEOUT"`
	ReverseGeocodeTimeout time.Duration `mapstructure:"REVERSE_GEOCODE_TIMEOUT"`
	IPLookupTimeout       time.Duration `mapstructure:"IP_LOOKUP_TIMEOUT"`

	GeocodeCacheSize int           `mapstructure:"GEOCODE_CACHE_SIZE"`
	GeocodeCacheTTL  time.Duration `mapstructure:"GEOCODE_CACHE_TTL"`
	RedisURL         string        `mapstructure:"REDIS_URL"`
	CityAliasesFile  string        `mapstructure:"CITY_ALIASES_FILE"`

	DefaultLat     float64 `mapstructure:"DEFAULT_LAT"`
	DefaultLng     float64 `mapstructure:"DEFAULT_LNG"`
	DefaultCity    string  `mapstructure:"DEFAULT_CITY"`
	DefaultRegion  string  `mapstructure:"DEFAULT_REGION"`
	DefaultCountry string  `mapstructure:"DEFAULT_COUNTRY"`

	DefaultRadiusKm float64 `mapstructure:"DEFAULT_RADIUS_KM"`
	HospitalLimit   int     `mapstructure:"HOSPITAL_LIMIT"`
	DoctorLimit     int     `mapstructure:"DOCTOR_LIMIT"`
	MaxLimit        int     `mapstructure:"MAX_LIMIT"`
}

var defaults = map[string]any{
	"ENV":                     "dev",
	"PORT":                    "8080",
	"REQUEST_TIMEOUT":         "30s",
	"LOG_LEVEL":               "info",
	"CORS_ALLOWED_ORIGINS":    "*",
	"GOOGLE_GEOCODE_URL":      "https://maps.googleapis.com/maps/api/geocode/json",
	"NOMINATIM_URL":           "https://nominatim.openstreetmap.org",
	"NOMINATIM_USER_AGENT":    "carefinder-backend",
	"NOMINATIM_RPS":           1.0,
	"IP_API_URL":              "http://ip-api.com/json",
	"GEOCODE_TIMEOUT":         "10s",
	"REVERSE_GEOCODE_TIMEOUT": "2s",
	"IP_LOOKUP_TIMEOUT":       "3s",
	"GEOCODE_CACHE_SIZE":      0,
	"GEOCODE_CACHE_TTL":       "0s",
	"DEFAULT_LAT":             28.6139,
	"DEFAULT_LNG":             77.2090,
	"DEFAULT_CITY":            "New Delhi",
	"DEFAULT_REGION":          "Delhi",
	"DEFAULT_COUNTRY":         "India",
	"DEFAULT_RADIUS_KM":       50.0,
	"HOSPITAL_LIMIT":          10,
	"DOCTOR_LIMIT":            20,
	"MAX_LIMIT":               100,
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	// Keys without a default are invisible to Unmarshal unless bound.
	for _, key := range []string{"DATABASE_URL", "ADMIN_KEY", "GOOGLE_MAPS_API_KEY", "REDIS_URL", "CITY_ALIASES_FILE"} {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DefaultLat < -90 || c.DefaultLat > 90 || c.DefaultLng < -180 || c.DefaultLng > 180 {
		return fmt.Errorf("default location %v,%v out of range", c.DefaultLat, c.DefaultLng)
	}
	if c.DefaultRadiusKm <= 0 {
		return errors.New("DEFAULT_RADIUS_KM must be positive")
	}
	if c.MaxLimit < 1 || c.HospitalLimit < 1 || c.DoctorLimit < 1 {
		return errors.New("result limits must be at least 1")
	}
	if c.HospitalLimit > c.MaxLimit || c.DoctorLimit > c.MaxLimit {
		return fmt.Errorf("HOSPITAL_LIMIT %d and DOCTOR_LIMIT %d must not exceed MAX_LIMIT %d", c.HospitalLimit, c.DoctorLimit, c.MaxLimit)
	}
	if c.GeocodeCacheSize < 0 {
		return errors.New("GEOCODE_CACHE_SIZE must not be negative")
	}
	return nil
}
