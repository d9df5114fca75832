// Package docs holds the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/main.go -o docs
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
        "/api/v1/frame": {
            "get": {
                "produces": ["application/json"],
                "tags": ["device"],
                "summary": "Get last LED frame",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Frame"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/logs": {
            "get": {
                "description": "Newest events matching the filter, returned oldest first. Dates are RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'; a date-only 'to' covers the whole day. 'limit' defaults to 200 and is capped at 1000.",
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List device events",
                "parameters": [
                    {"type": "string", "example": "2025-08-01", "description": "Start of range", "name": "from", "in": "query"},
                    {"type": "string", "example": "2025-08-31", "description": "End of range. Date-only treated as end of day.", "name": "to", "in": "query"},
                    {"enum": ["BOOT", "FACTORY_RESET", "STATE_CHANGE", "PROVISIONED", "POLL"], "type": "string", "description": "Event type", "name": "type", "in": "query"},
                    {"maximum": 1000, "minimum": 1, "type": "integer", "description": "Maximum number of events", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, events", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/state": {
            "get": {
                "description": "Connection phase, published status and its color, boot counter and the last poll.",
                "produces": ["application/json"],
                "tags": ["device"],
                "summary": "Get device state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.DeviceState"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/provision": {
            "post": {
                "description": "Served by the provisioning portal. Accepted only while the device is provisioning. Form submissions get the portal page back, JSON gets JSON.",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["provisioning"],
                "summary": "Submit network credentials",
                "parameters": [
                    {"description": "credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ProvisionRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "429": {"description": "Too Many Requests", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ProvisionRequest": {
            "type": "object",
            "properties": {
                "network_id": {"description": "Network to join. Required, at most 32 bytes.", "type": "string", "example": "home-wifi"},
                "secret": {"description": "Network secret. Empty for open networks, at most 64 bytes.", "type": "string", "example": "correct-horse"}
            }
        },
        "models.Color": {
            "type": "object",
            "properties": {
                "b": {"type": "integer"},
                "g": {"type": "integer"},
                "r": {"type": "integer"}
            }
        },
        "models.ConnectionState": {
            "type": "object",
            "properties": {
                "deadline": {"type": "string"},
                "network_id": {"type": "string"},
                "phase": {"type": "string", "enum": ["IDLE", "CONNECTING", "CONNECTED", "FAILED", "PROVISIONING"]},
                "since": {"type": "string"},
                "started_at": {"type": "string"}
            }
        },
        "models.DeviceState": {
            "type": "object",
            "properties": {
                "boot_count": {"type": "integer"},
                "color": {"type": "string", "example": "#00ff00"},
                "connection": {"$ref": "#/definitions/models.ConnectionState"},
                "last_poll_at": {"type": "string"},
                "monitors": {"type": "array", "items": {"$ref": "#/definitions/models.Monitor"}},
                "status": {"type": "string", "enum": ["unknown", "ok", "warn", "alert", "no_data", "provisioning"]}
            }
        },
        "models.Frame": {
            "type": "object",
            "properties": {
                "offset": {"type": "integer"},
                "pixels": {"type": "array", "items": {"$ref": "#/definitions/models.Color"}},
                "status": {"type": "string", "enum": ["unknown", "ok", "warn", "alert", "no_data", "provisioning"]}
            }
        },
        "models.Monitor": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "overall_state": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Lighthouse device API",
	Description:      "Read-only device state, LED frames and the event log of a Datadog status light.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
