// Package docs registers the OpenAPI description of the hub API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {"get": {"tags": ["system"], "summary": "Health check", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/locations": {
            "get": {"tags": ["locations"], "summary": "List locations", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["locations"], "summary": "Create a location", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/locations/{id}": {
            "get": {"tags": ["locations"], "summary": "Get a location by ID", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["locations"], "summary": "Update a location", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["locations"], "summary": "Delete a location", "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}}
        },
        "/locations/{id}/environment/logs": {
            "get": {"tags": ["environment"], "summary": "List hourly environment logs", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["environment"], "summary": "Add a manual environment log", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/locations/{id}/environment/latest": {"get": {"tags": ["environment"], "summary": "Latest environment log", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/locations/{id}/environment/daily": {"get": {"tags": ["environment"], "summary": "List daily environment summaries", "responses": {"200": {"description": "OK"}}}},
        "/locations/{id}/environment/stats": {"get": {"tags": ["environment"], "summary": "Environment statistics", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/locations/{id}/environment/export": {"post": {"tags": ["export"], "summary": "Export a location's environment data", "responses": {"201": {"description": "Created"}}}},
        "/environment/logs/{id}": {"delete": {"tags": ["environment"], "summary": "Delete an environment log", "responses": {"204": {"description": "No Content"}}}},
        "/imports": {"post": {"tags": ["imports"], "summary": "Upload a CSV for preview", "responses": {"201": {"description": "Created"}, "422": {"description": "Unprocessable Entity"}}}},
        "/imports/{id}": {
            "get": {"tags": ["imports"], "summary": "Get an import session", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["imports"], "summary": "Discard an import session", "responses": {"204": {"description": "No Content"}}}
        },
        "/imports/{id}/commit": {"post": {"tags": ["imports"], "summary": "Commit a previewed import", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "plalog hub API",
	Description:      "Environment log ingestion for the gardening log.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
