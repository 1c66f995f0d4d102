// Package docs registers the OpenAPI description served under /swagger.
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
        "/reports": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "description": "Returns the catalog of available reports with their endpoints",
                "produces": ["application/json"],
                "tags": ["Reports"],
                "summary": "List reports",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.ReportInfo"}}
                    }
                }
            }
        },
        "/reports/{report}": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "description": "Computes a report for a trailing period or an explicit date range. Admin role required.\n\nThe body is always {data, error, warnings}. warnings names data sources that failed and were treated as empty; the data is then partial. When every source fails the status is 502.\n\nDates accept RFC3339 or YYYY-MM-DD; a date-only end_date covers the whole day.",
                "produces": ["application/json"],
                "tags": ["Reports"],
                "summary": "Get report",
                "parameters": [
                    {
                        "enum": ["sales", "clients", "properties", "vendors", "interactions", "funnel", "lead-sources", "response-time", "interest-levels", "client-management"],
                        "type": "string",
                        "description": "Report kind",
                        "name": "report",
                        "in": "path",
                        "required": true
                    },
                    {"type": "integer", "description": "Trailing window in days (default 30)", "name": "period_days", "in": "query"},
                    {"type": "string", "description": "Window start", "name": "start_date", "in": "query"},
                    {"type": "string", "description": "Window end", "name": "end_date", "in": "query"},
                    {"type": "string", "description": "Project filter (interest-levels only)", "name": "project_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ReportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ReportResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ReportResponse"}}
                }
            }
        },
        "/reports/{report}/export": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "description": "Computes a report and downloads its tables as an XLSX workbook, one sheet per table plus an Info sheet with the period and any warnings. Admin role required.",
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["Reports"],
                "summary": "Export report",
                "parameters": [
                    {"type": "string", "description": "Report kind", "name": "report", "in": "path", "required": true},
                    {"type": "integer", "description": "Trailing window in days (default 30)", "name": "period_days", "in": "query"},
                    {"type": "string", "description": "Window start", "name": "start_date", "in": "query"},
                    {"type": "string", "description": "Window end", "name": "end_date", "in": "query"},
                    {"type": "string", "description": "Project filter (interest-levels only)", "name": "project_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        }
    },
    "definitions": {
        "domain.APIError": {
            "type": "object",
            "properties": {
                "detail": {"type": "string"},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}},
                "status": {"type": "integer"},
                "title": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "handler.ReportInfo": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "exportPath": {"type": "string"},
                "kind": {"type": "string"},
                "path": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "handler.ReportResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"type": "string"},
                "warnings": {"type": "array", "items": {"type": "string"}}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "x-api-key", "in": "header"},
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Straye CRM Reports API",
	Description:      "Reporting and analytics over the real-estate CRM: sales, clients, inventory, vendors, interactions, funnel, lead sources, response time, interest levels and client follow-up.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
