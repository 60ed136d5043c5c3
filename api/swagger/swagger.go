package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Crata API",
        "description": "Assessment delivery, chart derivation and group analytics service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Operator authentication"},
        {"name": "Manse", "description": "Calendrical chart derivation"},
        {"name": "Tests", "description": "Question delivery and submissions"},
        {"name": "Groups", "description": "Group behavioral analytics"}
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate an operator account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/manse/calc": {
            "post": {
                "tags": ["Manse"],
                "summary": "Derive a chart for one birth input",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ManseCalcRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No calendrical data for the birthday"}
                }
            }
        },
        "/manse/seed": {
            "post": {
                "tags": ["Manse"],
                "summary": "Enqueue a reference-table seed import",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ManseSeedRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tests/{slug}/run": {
            "get": {
                "tags": ["Tests"],
                "summary": "Get the active question set for a test",
                "parameters": [
                    {"name": "slug", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No active version"}
                }
            }
        },
        "/tests/{slug}/results": {
            "post": {
                "tags": ["Tests"],
                "summary": "Submit a completed test run",
                "parameters": [
                    {"name": "slug", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitResultRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Ticket already consumed"}
                }
            }
        },
        "/groups/{groupId}/analytics": {
            "get": {
                "tags": ["Groups"],
                "summary": "Get the full behavioral aggregation for a group",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "groupId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Group not found"}
                }
            }
        },
        "/groups/{groupId}/members": {
            "get": {
                "tags": ["Groups"],
                "summary": "List completed respondents of a group",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "groupId", "in": "path", "required": true, "type": "integer"},
                    {"name": "type", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/groups/{groupId}/sub-groups": {
            "get": {
                "tags": ["Groups"],
                "summary": "List direct sub-groups of a group",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "groupId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/groups/{groupId}/sub-groups/comparison": {
            "get": {
                "tags": ["Groups"],
                "summary": "Compare aggregations across a group's sub-groups",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "groupId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/groups/{groupId}/report": {
            "post": {
                "tags": ["Groups"],
                "summary": "Generate a downloadable group report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "groupId", "in": "path", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/download/{token}": {
            "get": {
                "tags": ["Groups"],
                "summary": "Download a generated report by signed token",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        },
        "/analytics/system": {
            "get": {
                "tags": ["Groups"],
                "summary": "Get aggregated instrumentation counters",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "ManseCalcRequest": {
            "type": "object",
            "properties": {
                "gender": {"type": "string", "enum": ["MALE", "FEMALE"]},
                "birthdayType": {"type": "string", "enum": ["SOLAR", "LUNAR"]},
                "birthday": {"type": "string"},
                "time": {"type": "string"}
            },
            "required": ["birthday"]
        },
        "ManseSeedRequest": {
            "type": "object",
            "properties": {
                "fileName": {"type": "string"}
            },
            "required": ["fileName"]
        },
        "SubmitResultRequest": {
            "type": "object",
            "properties": {
                "ticketCode": {"type": "string"},
                "userMeta": {"$ref": "#/definitions/UserMetaInput"},
                "answers": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/AnswerInput"}
                },
                "resultSnapshot": {"type": "object"},
                "resultVersion": {"type": "string"}
            },
            "required": ["answers"]
        },
        "UserMetaInput": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "gender": {"type": "string"},
                "birthday": {"type": "string"},
                "birthdayType": {"type": "string", "enum": ["SOLAR", "LUNAR"]},
                "time": {"type": "string"}
            }
        },
        "AnswerInput": {
            "type": "object",
            "properties": {
                "questionId": {"type": "string"},
                "categoryId": {"type": "string"},
                "categoryName": {"type": "string"},
                "parentId": {"type": "string"},
                "valueCode": {"type": "string"},
                "score": {"type": "integer"}
            },
            "required": ["questionId"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
