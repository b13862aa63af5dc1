// Package docs registers the OpenAPI document served under /swagger.
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
        "/tournaments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "List tournaments",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Create a tournament",
                "parameters": [
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/createTournamentInput"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Malformed body"},
                    "422": {"description": "Name missing or too long"}
                }
            }
        },
        "/tournaments/{tournamentID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Get a tournament",
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/tournaments/{tournamentID}/teams": {
            "get": {
                "produces": ["application/json"],
                "tags": ["teams"],
                "summary": "List registered teams",
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["teams"],
                "summary": "Register a national team with its 23-player squad",
                "parameters": [
                    {"$ref": "#/parameters/tournamentID"},
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/registerTeamInput"}}
                ],
                "responses": {
                    "201": {"description": "Registered; the eighth registration seeds the quarterfinals"},
                    "404": {"description": "Tournament not found"},
                    "409": {"description": "Country taken, tournament full or registration closed"},
                    "422": {"description": "Invalid squad, violations listed"}
                }
            }
        },
        "/tournaments/{tournamentID}/teams/{country}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["teams"],
                "summary": "Get a team",
                "parameters": [
                    {"$ref": "#/parameters/tournamentID"},
                    {"in": "path", "name": "country", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/tournaments/{tournamentID}/standings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["teams"],
                "summary": "Display standings ordered by points, goal difference, goals scored",
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/tournaments/{tournamentID}/bracket": {
            "get": {
                "produces": ["application/json"],
                "tags": ["bracket"],
                "summary": "Bracket with quarterfinal, semifinal and final rounds",
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/tournaments/{tournamentID}/advance": {
            "post": {
                "produces": ["application/json"],
                "tags": ["bracket"],
                "summary": "Re-run the stage completion check",
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {
                    "200": {"description": "advanced reports whether the stage changed"},
                    "404": {"description": "Not found"},
                    "409": {"description": "Fewer than eight teams registered"}
                }
            }
        },
        "/matches/{matchID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Get a match",
                "parameters": [{"$ref": "#/parameters/matchID"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/matches/{matchID}/resolve": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Simulate a scheduled match",
                "parameters": [
                    {"$ref": "#/parameters/matchID"},
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/resolveMatchInput"}}
                ],
                "responses": {
                    "200": {"description": "Result stored"},
                    "400": {"description": "Unknown resolution method"},
                    "404": {"description": "Match not found"},
                    "409": {"description": "Match already completed"}
                }
            }
        }
    },
    "parameters": {
        "tournamentID": {"in": "path", "name": "tournamentID", "type": "string", "format": "uuid", "required": true},
        "matchID": {"in": "path", "name": "matchID", "type": "string", "format": "uuid", "required": true}
    },
    "definitions": {
        "createTournamentInput": {
            "type": "object",
            "properties": {"name": {"type": "string"}}
        },
        "resolveMatchInput": {
            "type": "object",
            "properties": {"method": {"type": "string", "enum": ["quick", "detailed"]}}
        },
        "representative": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "email": {"type": "string"}}
        },
        "player": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "natural_position": {"type": "string", "enum": ["GK", "DF", "MD", "AT"]},
                "ratings": {"type": "object", "additionalProperties": {"type": "integer"}},
                "is_captain": {"type": "boolean"}
            }
        },
        "registerTeamInput": {
            "type": "object",
            "properties": {
                "country": {"type": "string"},
                "manager": {"type": "string"},
                "representative": {"$ref": "#/definitions/representative"},
                "roster": {"type": "array", "items": {"$ref": "#/definitions/player"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Nations Cup API",
	Description:      "Eight-team single-elimination tournament engine.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
