package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ClassTrack API",
        "description": "Grading and summary aggregation service for school conduct and academic tracking",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "SchoolYears", "description": "School year and week registry"},
        {"name": "Weeks", "description": "Week lifecycle and deletion"},
        {"name": "Classes", "description": "Class roster"},
        {"name": "Students", "description": "Student roster"},
        {"name": "ViolationTypes", "description": "Violation type catalog"},
        {"name": "DailyScores", "description": "Per-day conduct and academic scoring"},
        {"name": "Discipline", "description": "Weekly discipline gradings"},
        {"name": "Academic", "description": "Weekly academic gradings"},
        {"name": "Violations", "description": "Violation ledger and review"},
        {"name": "WeeklySummaries", "description": "Weekly summary aggregation"},
        {"name": "MonthlySummaries", "description": "Monthly summary aggregation"},
        {"name": "Reports", "description": "Async report export"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/school-years": {
            "get": {
                "tags": ["SchoolYears"],
                "summary": "List school years",
                "responses": {"200": {"$ref": "#/definitions/ResponseEnvelope"}}
            },
            "post": {
                "tags": ["SchoolYears"],
                "summary": "Create school year",
                "responses": {"201": {"$ref": "#/definitions/ResponseEnvelope"}}
            }
        },
        "/school-years/{id}/weeks/generate": {
            "post": {
                "tags": ["SchoolYears"],
                "summary": "Generate the Monday-aligned week registry",
                "responses": {"201": {"$ref": "#/definitions/ResponseEnvelope"}}
            }
        },
        "/weeks/{id}/approve": {
            "post": {
                "tags": ["Weeks"],
                "summary": "Approve a draft week",
                "responses": {"200": {"$ref": "#/definitions/ResponseEnvelope"}}
            }
        },
        "/weeks/{id}/lock": {
            "post": {
                "tags": ["Weeks"],
                "summary": "Lock an approved week",
                "responses": {"200": {"$ref": "#/definitions/ResponseEnvelope"}}
            }
        },
        "/weeks/{id}/unlock": {
            "post": {
                "tags": ["Weeks"],
                "summary": "Unlock a locked week and re-open dependent records",
                "responses": {"200": {"$ref": "#/definitions/ResponseEnvelope"}}
            }
        },
        "/weeks/{id}/delete-preview": {
            "get": {
                "tags": ["Weeks"],
                "summary": "Preview dependent records a week delete would remove",
                "responses": {"200": {"$ref": "#/definitions/ResponseEnvelope"}}
            }
        },
        "/violations": {
            "get": {
                "tags": ["Violations"],
                "summary": "List violations",
                "responses": {"200": {"$ref": "#/definitions/ResponseEnvelope"}}
            },
            "post": {
                "tags": ["Violations"],
                "summary": "Log a violation",
                "responses": {"201": {"$ref": "#/definitions/ResponseEnvelope"}}
            }
        },
        "/violations/{id}/approve": {
            "post": {
                "tags": ["Violations"],
                "summary": "Approve a pending violation",
                "responses": {"200": {"$ref": "#/definitions/ResponseEnvelope"}}
            }
        },
        "/violations/{id}/reject": {
            "post": {
                "tags": ["Violations"],
                "summary": "Reject a pending violation with a reason",
                "responses": {"200": {"$ref": "#/definitions/ResponseEnvelope"}}
            }
        },
        "/weekly-summaries/regenerate": {
            "post": {
                "tags": ["WeeklySummaries"],
                "summary": "Rebuild the weekly summary of a week and class",
                "responses": {"200": {"$ref": "#/definitions/ResponseEnvelope"}}
            }
        },
        "/monthly-summaries/regenerate": {
            "post": {
                "tags": ["MonthlySummaries"],
                "summary": "Rebuild a class monthly summary",
                "responses": {"200": {"$ref": "#/definitions/ResponseEnvelope"}}
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a report export job",
                "responses": {"201": {"$ref": "#/definitions/ResponseEnvelope"}}
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Poll a report job status",
                "responses": {"200": {"$ref": "#/definitions/ResponseEnvelope"}}
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished report via signed token",
                "responses": {"200": {"description": "File stream"}}
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
