// Package docs registers the OpenAPI document served at /v1/swagger.
// Regenerate with: swag init -g cmd/api/main.go
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
        "/health": {
            "get": {"tags": ["system"], "summary": "Liveness and dependency status", "responses": {"200": {"description": "OK"}, "503": {"description": "Dependencies unavailable"}}}
        },
        "/reviewers": {
            "get": {"tags": ["applicants"], "summary": "Reviewer and decision options", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/applicants": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["applicants"],
                "summary": "List applicants",
                "parameters": [{"type": "string", "description": "Case-insensitive name filter", "name": "search", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["applicants"],
                "summary": "Create applicant",
                "parameters": [{"description": "Applicant", "name": "applicant", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.CreateApplicantRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            },
            "delete": {"security": [{"BearerAuth": []}], "tags": ["applicants"], "summary": "Delete every applicant", "responses": {"200": {"description": "OK"}}}
        },
        "/applicants/stats": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["applicants"], "summary": "Applicant totals", "responses": {"200": {"description": "OK"}}}
        },
        "/applicants/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["applicants"],
                "summary": "Export applicants",
                "parameters": [{"enum": ["csv", "xlsx"], "type": "string", "name": "format", "in": "query"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "No applicants to export"}}
            }
        },
        "/applicants/bulk-delete": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["applicants"],
                "summary": "Delete several applicants",
                "parameters": [{"name": "ids", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.BulkDeleteRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/applicants/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["applicants"], "summary": "Get applicant", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["applicants"], "summary": "Delete applicant", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/applicants/{id}/consensus": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["applicants"], "summary": "Aggregated reviewer decisions", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/applicants/{id}/comments": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["applicants"],
                "summary": "Add a reviewer comment",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "comment", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.AddCommentRequest"}}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/resumes": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "tags": ["resumes"],
                "summary": "Upload a resume",
                "parameters": [
                    {"type": "file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "name": "file_name", "in": "formData"}
                ],
                "responses": {"201": {"description": "Created"}, "413": {"description": "Too Large"}, "415": {"description": "Not a PDF"}, "429": {"description": "Too Many Requests"}}
            }
        },
        "/resumes/{name}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "tags": ["resumes"],
                "summary": "Fetch a stored resume",
                "parameters": [
                    {"type": "string", "name": "name", "in": "path", "required": true},
                    {"type": "boolean", "name": "download", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["resumes"],
                "summary": "Delete a stored resume",
                "parameters": [
                    {"type": "string", "name": "name", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        }
    },
    "definitions": {
        "domain.CreateApplicantRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "linkedin_url": {"type": "string"},
                "expected_salary": {"type": "string"},
                "notes": {"type": "string"},
                "resume_path": {"type": "string"},
                "resume_name": {"type": "string"},
                "resume_pages": {"type": "integer"}
            }
        },
        "domain.BulkDeleteRequest": {
            "type": "object",
            "properties": {"ids": {"type": "array", "items": {"type": "string"}}}
        },
        "domain.AddCommentRequest": {
            "type": "object",
            "properties": {
                "reviewer": {"type": "string", "enum": ["MIZ", "JEANETTE", "MANISH", "AYESHA"]},
                "decision": {"type": "string", "enum": ["Considering", "Not Considering"]},
                "note": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Applicant Tracker API",
	Description:      "Applicant store, reviewer comments and consensus for the hiring dashboard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
