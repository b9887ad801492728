// Package docs registers the OpenAPI description of the local HTTP API with
// swag. It is linked in by builds using -tags swagger.
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
        "/transform": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Enhance text or draft a reply, local model first",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/types.TransformRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TransformResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Remote returned a bad response", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Local model unavailable and fallback disabled", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "summary": "Engine, installed model and routing policy",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}
            }
        },
        "/model/install": {
            "post": {
                "produces": ["application/json"],
                "summary": "Copy the bundled model into the shared store",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelAsset"}},
                    "404": {"description": "No model found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "409": {"description": "Shared store not configured", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/model/reset": {
            "post": {"summary": "Unload the engine and remove installed models", "responses": {"204": {"description": "No Content"}}}
        },
        "/engine/unload": {
            "post": {"summary": "Release the native engine", "responses": {"204": {"description": "No Content"}}}
        },
        "/settings": {
            "get": {
                "produces": ["application/json"],
                "summary": "Routing and remote settings",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Settings"}}}
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Update routing and remote settings",
                "parameters": [
                    {"in": "body", "name": "settings", "required": true, "schema": {"$ref": "#/definitions/types.Settings"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Settings"}}}
            }
        }
    },
    "definitions": {
        "types.TransformRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string", "example": "hey are we still on for lunch"},
                "mode": {"type": "string", "example": "reply"},
                "style": {"type": "string", "example": "friendly"}
            }
        },
        "types.TransformResponse": {
            "type": "object",
            "properties": {"text": {"type": "string", "example": "Yes! See you at noon."}}
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "integer"},
                "install_hint": {"type": "string"}
            }
        },
        "types.ModelAsset": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "gemma-3-270m-it.gguf"},
                "path": {"type": "string"},
                "size_bytes": {"type": "integer"},
                "location": {"type": "string", "example": "shared"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "engine": {"type": "object"},
                "installed": {"$ref": "#/definitions/types.ModelAsset"},
                "installed_size": {"type": "string", "example": "50.0 MB"},
                "policy": {"type": "object"},
                "uptime_seconds": {"type": "integer"},
                "server_time_unix": {"type": "integer"}
            }
        },
        "types.Settings": {
            "type": "object",
            "properties": {
                "endpoint": {"type": "string", "example": "https://api.example.com"},
                "api_key": {"type": "string"},
                "api_key_set": {"type": "boolean"},
                "prefer_local": {"type": "boolean"},
                "allow_fallback": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "keyboardai API",
	Description:      "Local HTTP API for on-device text transformation with remote fallback.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
