// Package docs holds the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/token": {
            "post": {
                "summary": "Exchange the organizer API key for a JWT",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"apiKey": {"type": "string"}}}}],
                "responses": {"200": {"description": "token issued"}, "401": {"description": "invalid api key"}}
            }
        },
        "/events/{eventID}/draws": {
            "get": {
                "summary": "List draws of an event",
                "parameters": [{"in": "path", "name": "eventID", "type": "string", "required": true}],
                "responses": {"200": {"description": "draw summaries"}}
            },
            "post": {
                "summary": "Generate a draw",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "eventID", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"201": {"description": "draw generated"}, "400": {"description": "engine error with code"}, "409": {"description": "draw id taken"}}
            }
        },
        "/draws/{drawID}": {
            "get": {
                "summary": "Get a draw definition",
                "parameters": [{"in": "path", "name": "drawID", "type": "string", "required": true}],
                "responses": {"200": {"description": "draw"}, "404": {"description": "not found"}}
            }
        },
        "/draws/{drawID}/structures/{structureID}/matchups": {
            "get": {
                "summary": "MatchUps of a structure with context",
                "parameters": [
                    {"in": "path", "name": "drawID", "type": "string", "required": true},
                    {"in": "path", "name": "structureID", "type": "string", "required": true},
                    {"in": "query", "name": "rounds", "type": "string", "description": "comma separated round numbers"}
                ],
                "responses": {"200": {"description": "matchUps"}}
            }
        },
        "/draws/{drawID}/structures/{structureID}/hierarchy": {
            "get": {
                "summary": "Elimination tree of a structure",
                "parameters": [
                    {"in": "path", "name": "drawID", "type": "string", "required": true},
                    {"in": "path", "name": "structureID", "type": "string", "required": true},
                    {"in": "query", "name": "depth", "type": "integer", "description": "collapse nodes at this depth"}
                ],
                "responses": {"200": {"description": "hierarchy"}}
            }
        },
        "/draws/{drawID}/structures/{structureID}": {
            "delete": {
                "summary": "Remove a structure and everything it feeds",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "drawID", "type": "string", "required": true},
                    {"in": "path", "name": "structureID", "type": "string", "required": true},
                    {"in": "query", "name": "force", "type": "boolean"}
                ],
                "responses": {"200": {"description": "removed structure ids"}, "409": {"description": "scores present"}}
            }
        },
        "/draws/{drawID}/matchups/{matchUpID}/outcome": {
            "put": {
                "summary": "Set a matchUp outcome",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "drawID", "type": "string", "required": true},
                    {"in": "path", "name": "matchUpID", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "modified matchUps"}, "409": {"description": "version conflict"}}
            },
            "delete": {
                "summary": "Remove a matchUp outcome",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "drawID", "type": "string", "required": true},
                    {"in": "path", "name": "matchUpID", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "modified matchUps"}}
            }
        },
        "/draws/{drawID}/playoffs": {
            "post": {
                "summary": "Add playoff structures",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "drawID", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"201": {"description": "playoff structures"}}
            }
        },
        "/draws/{drawID}/export": {
            "post": {
                "summary": "Export the draw and its hierarchies to object storage",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "drawID", "type": "string", "required": true}],
                "responses": {"200": {"description": "uploaded objects"}, "503": {"description": "storage not configured"}}
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
	Title:            "Tournament Draws API",
	Description:      "Draw generation, outcomes and playoffs for tournament events.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
