package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "{{.Title}}",
    "description": "{{escape .Description}}",
    "version": "{{.Version}}"
  },
  "basePath": "{{.BasePath}}",
  "paths": {
    "/healthz": {"get": {"tags": ["health"], "summary": "Database health", "responses": {"200": {"description": "ok"}, "503": {"description": "database unavailable"}}}},
    "/api/location/current": {"get": {"tags": ["location"], "summary": "Current location", "parameters": [
      {"name": "lat", "in": "query", "type": "number"},
      {"name": "lng", "in": "query", "type": "number"},
      {"name": "address", "in": "query", "type": "string"}
    ], "responses": {"200": {"description": "resolved location"}}}},
    "/api/location/reverse-geocode": {"post": {"tags": ["location"], "summary": "Reverse geocode", "parameters": [
      {"name": "request", "in": "body", "required": true, "schema": {"type": "object", "properties": {"lat": {"type": "number"}, "lng": {"type": "number"}}}}
    ], "responses": {"200": {"description": "location"}, "400": {"description": "validation error"}, "404": {"description": "not found"}, "502": {"description": "geocoding unavailable"}}}},
    "/api/location/geocode": {"post": {"tags": ["location"], "summary": "Forward geocode", "parameters": [
      {"name": "request", "in": "body", "required": true, "schema": {"type": "object", "properties": {"address": {"type": "string"}}}}
    ], "responses": {"200": {"description": "coordinates and address"}, "400": {"description": "validation error"}, "404": {"description": "not found"}, "502": {"description": "geocoding unavailable"}}}},
    "/api/nearby/hospitals": {"get": {"tags": ["nearby"], "summary": "Nearby hospitals", "parameters": [
      {"name": "lat", "in": "query", "type": "number", "required": true},
      {"name": "lng", "in": "query", "type": "number", "required": true},
      {"name": "radius", "in": "query", "type": "number", "default": 50},
      {"name": "specialty", "in": "query", "type": "string"},
      {"name": "limit", "in": "query", "type": "integer", "default": 10}
    ], "responses": {"200": {"description": "hospitals"}, "400": {"description": "validation error"}, "500": {"description": "candidate fetch failed"}}}},
    "/api/nearby/doctors": {"get": {"tags": ["nearby"], "summary": "Nearby doctors", "parameters": [
      {"name": "lat", "in": "query", "type": "number", "required": true},
      {"name": "lng", "in": "query", "type": "number", "required": true},
      {"name": "radius", "in": "query", "type": "number", "default": 50},
      {"name": "specialty", "in": "query", "type": "string"},
      {"name": "limit", "in": "query", "type": "integer", "default": 20}
    ], "responses": {"200": {"description": "doctors"}, "400": {"description": "validation error"}, "500": {"description": "candidate fetch failed"}}}},
    "/api/nearby/healthcare": {"get": {"tags": ["nearby"], "summary": "Nearby hospitals and doctors", "parameters": [
      {"name": "lat", "in": "query", "type": "number", "required": true},
      {"name": "lng", "in": "query", "type": "number", "required": true},
      {"name": "radius", "in": "query", "type": "number", "default": 50},
      {"name": "specialty", "in": "query", "type": "string"},
      {"name": "hospitalLimit", "in": "query", "type": "integer", "default": 10},
      {"name": "doctorLimit", "in": "query", "type": "integer", "default": 20}
    ], "responses": {"200": {"description": "hospitals and doctors"}, "400": {"description": "validation error"}, "500": {"description": "candidate fetch failed"}}}},
    "/api/providers/{id}": {"get": {"tags": ["providers"], "summary": "Provider details", "parameters": [
      {"name": "id", "in": "path", "type": "string", "required": true}
    ], "responses": {"200": {"description": "provider"}, "404": {"description": "not found"}}}},
    "/api/admin/geocode-cache": {
      "get": {"tags": ["admin"], "summary": "Geocode cache stats", "parameters": [{"name": "X-Admin-Key", "in": "header", "type": "string", "required": true}], "responses": {"200": {"description": "stats"}, "401": {"description": "unauthorized"}}},
      "delete": {"tags": ["admin"], "summary": "Purge geocode cache", "parameters": [{"name": "X-Admin-Key", "in": "header", "type": "string", "required": true}], "responses": {"200": {"description": "purged"}, "401": {"description": "unauthorized"}, "501": {"description": "not supported"}}}
    }
  }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Title:            "CareFinder Backend",
	Description:      "Location resolution and nearby hospital and doctor matching",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
