package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Results API",
        "description": "Result computation, ranking and report card lifecycle",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Results",
            "description": "Scores, grades and class ranking"
        },
        {
            "name": "Report Cards",
            "description": "Report card generation and publication"
        },
        {
            "name": "Schools",
            "description": "Grading system and academic calendar"
        },
        {
            "name": "Terms",
            "description": "Term activation"
        },
        {
            "name": "Students",
            "description": "Student register"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Liveness",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness with dependency checks",
                "responses": {
                    "200": {
                        "description": "ready"
                    },
                    "503": {
                        "description": "degraded"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/v1/results": {
            "get": {
                "tags": [
                    "Results"
                ],
                "summary": "List results",
                "parameters": [
                    {
                        "name": "class",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "studentId",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "academicYear",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "term",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "examType",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "includeArchived",
                        "in": "query",
                        "type": "boolean"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "Results"
                ],
                "summary": "Create a result",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateResultRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Duplicate result",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/bulk-create": {
            "post": {
                "tags": [
                    "Results"
                ],
                "summary": "Create many results",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/BulkCreateRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "All created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "207": {
                        "description": "Partially created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/statistics": {
            "get": {
                "tags": [
                    "Results"
                ],
                "summary": "Class statistics",
                "parameters": [
                    {
                        "name": "class",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "academicYear",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "term",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "examType",
                        "in": "query",
                        "type": "string",
                        "description": "Defaults to End-of-Term"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/calculate-positions": {
            "post": {
                "tags": [
                    "Results"
                ],
                "summary": "Rank a class cohort",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CalculatePositionsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Cohort has published results",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/student/{studentId}": {
            "get": {
                "tags": [
                    "Results"
                ],
                "summary": "Results of a student",
                "parameters": [
                    {
                        "name": "studentId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/class/{className}": {
            "get": {
                "tags": [
                    "Results"
                ],
                "summary": "Results of a class",
                "parameters": [
                    {
                        "name": "className",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "academicYear",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "term",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/class/{className}/export": {
            "get": {
                "tags": [
                    "Results"
                ],
                "summary": "Export class results",
                "parameters": [
                    {
                        "name": "className",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "academicYear",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "term",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "examType",
                        "in": "query",
                        "type": "string",
                        "description": "Defaults to End-of-Term"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/class/{className}/generate-reports": {
            "post": {
                "tags": [
                    "Report Cards"
                ],
                "summary": "Queue report cards for a class",
                "parameters": [
                    {
                        "name": "className",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "academicYear",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "term",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "examType",
                        "in": "query",
                        "type": "string",
                        "description": "Defaults to End-of-Term"
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/{id}": {
            "get": {
                "tags": [
                    "Results"
                ],
                "summary": "Get a result",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/{id}/subjects/{index}": {
            "put": {
                "tags": [
                    "Results"
                ],
                "summary": "Replace a subject record",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "index",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "name": "If-Match",
                        "in": "header",
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SubjectInput"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Version conflict or locked result",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "Missing If-Match",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/{id}/attendance": {
            "put": {
                "tags": [
                    "Results"
                ],
                "summary": "Update attendance",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "If-Match",
                        "in": "header",
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/Attendance"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Version conflict or locked result",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "Missing If-Match",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/{id}/behavior": {
            "put": {
                "tags": [
                    "Results"
                ],
                "summary": "Update behaviour ratings",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "If-Match",
                        "in": "header",
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/Behavior"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Version conflict or locked result",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "Missing If-Match",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/{id}/comments": {
            "put": {
                "tags": [
                    "Results"
                ],
                "summary": "Update remarks",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "If-Match",
                        "in": "header",
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CommentsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Version conflict or locked result",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "Missing If-Match",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/{id}/activities": {
            "put": {
                "tags": [
                    "Results"
                ],
                "summary": "Replace activities",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "If-Match",
                        "in": "header",
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/Activities"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Version conflict or locked result",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "Missing If-Match",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/{id}/next-term": {
            "put": {
                "tags": [
                    "Results"
                ],
                "summary": "Update next term information",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "If-Match",
                        "in": "header",
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/NextTerm"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Version conflict or locked result",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "Missing If-Match",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/{id}/generate-report": {
            "post": {
                "tags": [
                    "Report Cards"
                ],
                "summary": "Generate the report card",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Invalid state",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/{id}/publish-report": {
            "put": {
                "tags": [
                    "Report Cards"
                ],
                "summary": "Publish the report card",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Invalid state",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/{id}/unpublish-report": {
            "put": {
                "tags": [
                    "Report Cards"
                ],
                "summary": "Withdraw a published report card",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Invalid state",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/{id}/archive": {
            "put": {
                "tags": [
                    "Report Cards"
                ],
                "summary": "Archive a result",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/results/{id}/report-card": {
            "get": {
                "tags": [
                    "Report Cards"
                ],
                "summary": "Signed report card link",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/report-cards/download/{token}": {
            "get": {
                "tags": [
                    "Report Cards"
                ],
                "summary": "Download a report card or export",
                "parameters": [
                    {
                        "name": "token",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "produces": [
                    "application/pdf",
                    "text/csv"
                ],
                "responses": {
                    "200": {
                        "description": "File"
                    },
                    "403": {
                        "description": "Expired or invalid token"
                    }
                }
            }
        },
        "/api/v1/schools": {
            "post": {
                "tags": [
                    "Schools"
                ],
                "summary": "Register a school",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateSchoolRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/schools/current": {
            "get": {
                "tags": [
                    "Schools"
                ],
                "summary": "Current school",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/schools/current/grading-system": {
            "put": {
                "tags": [
                    "Schools"
                ],
                "summary": "Replace the grading system",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/GradingSystem"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Invalid grade scale",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/schools/current/policy": {
            "put": {
                "tags": [
                    "Schools"
                ],
                "summary": "Update ranking and promotion policy",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SchoolPolicy"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/schools/current/academic-year": {
            "post": {
                "tags": [
                    "Schools"
                ],
                "summary": "Start an academic year",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/StartAcademicYearRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/terms": {
            "get": {
                "tags": [
                    "Terms"
                ],
                "summary": "List terms",
                "parameters": [
                    {
                        "name": "academicYear",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "Terms"
                ],
                "summary": "Create a term",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateTermRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/terms/active": {
            "get": {
                "tags": [
                    "Terms"
                ],
                "summary": "Active term",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/terms/{id}/activate": {
            "post": {
                "tags": [
                    "Terms"
                ],
                "summary": "Activate a term",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/students": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "List students",
                "parameters": [
                    {
                        "name": "class",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "Students"
                ],
                "summary": "Register a student",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateStudentRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/students/{id}": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Get a student",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/metrics/summary": {
            "get": {
                "summary": "Service counters and queue backlog",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "ComponentScores": {
            "type": "object",
            "properties": {
                "class_work": {
                    "type": "number"
                },
                "homework": {
                    "type": "number"
                },
                "class_test": {
                    "type": "number"
                },
                "assignment": {
                    "type": "number"
                },
                "project": {
                    "type": "number"
                },
                "mid_term_exam": {
                    "type": "number"
                },
                "final_exam": {
                    "type": "number"
                }
            }
        },
        "SubjectInput": {
            "type": "object",
            "properties": {
                "subject_name": {
                    "type": "string"
                },
                "subject_code": {
                    "type": "string"
                },
                "teacher_id": {
                    "type": "string"
                },
                "scores": {
                    "$ref": "#/definitions/ComponentScores"
                },
                "weightings": {
                    "$ref": "#/definitions/ComponentScores"
                },
                "pass_mark": {
                    "type": "number"
                },
                "teacher_comment": {
                    "type": "string"
                }
            },
            "required": [
                "subject_name",
                "subject_code"
            ]
        },
        "CreateResultRequest": {
            "type": "object",
            "properties": {
                "student_id": {
                    "type": "string"
                },
                "academic_year": {
                    "type": "string"
                },
                "term": {
                    "type": "string"
                },
                "class_name": {
                    "type": "string"
                },
                "exam_type": {
                    "type": "string"
                },
                "subjects": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/SubjectInput"
                    }
                },
                "attendance": {
                    "$ref": "#/definitions/Attendance"
                },
                "behavior": {
                    "$ref": "#/definitions/Behavior"
                },
                "comments": {
                    "$ref": "#/definitions/CommentsRequest"
                },
                "activities": {
                    "$ref": "#/definitions/Activities"
                },
                "next_term": {
                    "$ref": "#/definitions/NextTerm"
                }
            },
            "required": [
                "student_id",
                "academic_year",
                "term",
                "class_name",
                "exam_type"
            ]
        },
        "BulkCreateRequest": {
            "type": "array",
            "items": {
                "$ref": "#/definitions/CreateResultRequest"
            }
        },
        "CalculatePositionsRequest": {
            "type": "object",
            "properties": {
                "class_name": {
                    "type": "string"
                },
                "academic_year": {
                    "type": "string"
                },
                "term": {
                    "type": "string"
                },
                "exam_type": {
                    "type": "string"
                }
            },
            "required": [
                "class_name",
                "academic_year",
                "term"
            ]
        },
        "Attendance": {
            "type": "object",
            "properties": {
                "total_days": {
                    "type": "integer"
                },
                "present_days": {
                    "type": "integer"
                },
                "absent_days": {
                    "type": "integer"
                },
                "late_comings": {
                    "type": "integer"
                }
            }
        },
        "Behavior": {
            "type": "object",
            "properties": {
                "conduct": {
                    "type": "string"
                },
                "attitude": {
                    "type": "string"
                },
                "punctuality": {
                    "type": "string"
                },
                "cooperation": {
                    "type": "string"
                }
            }
        },
        "CommentsRequest": {
            "type": "object",
            "properties": {
                "class_teacher": {
                    "type": "string"
                },
                "principal": {
                    "type": "string"
                }
            }
        },
        "Activities": {
            "type": "array",
            "items": {
                "type": "object",
                "properties": {
                    "name": {
                        "type": "string"
                    },
                    "grade": {
                        "type": "string"
                    },
                    "position": {
                        "type": "string"
                    },
                    "achievement": {
                        "type": "string"
                    }
                },
                "required": [
                    "name"
                ]
            }
        },
        "NextTerm": {
            "type": "object",
            "properties": {
                "resumption_date": {
                    "type": "string"
                },
                "new_class": {
                    "type": "string"
                },
                "fees_for_next_term": {
                    "type": "number"
                }
            }
        },
        "GradeBand": {
            "type": "object",
            "properties": {
                "grade": {
                    "type": "string"
                },
                "min_score": {
                    "type": "number"
                },
                "max_score": {
                    "type": "number"
                },
                "description": {
                    "type": "string"
                },
                "grade_point": {
                    "type": "number"
                }
            },
            "required": [
                "grade"
            ]
        },
        "GradingSystem": {
            "type": "object",
            "properties": {
                "type": {
                    "type": "string"
                },
                "scale": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/GradeBand"
                    }
                },
                "pass_mark_default": {
                    "type": "number"
                }
            }
        },
        "SchoolPolicy": {
            "type": "object",
            "properties": {
                "promotion_threshold": {
                    "type": "number"
                },
                "promote_when_no_subjects": {
                    "type": "boolean"
                },
                "ranking_tie_break": {
                    "type": "string",
                    "enum": [
                        "competition",
                        "dense",
                        "ordinal"
                    ]
                }
            }
        },
        "CreateSchoolRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "motto": {
                    "type": "string"
                },
                "logo_url": {
                    "type": "string"
                },
                "academic_year": {
                    "type": "string"
                },
                "academic_year_start": {
                    "type": "string"
                },
                "academic_year_end": {
                    "type": "string"
                },
                "grading_system": {
                    "$ref": "#/definitions/GradingSystem"
                },
                "settings": {
                    "type": "object"
                }
            },
            "required": [
                "name",
                "academic_year",
                "academic_year_start",
                "academic_year_end"
            ]
        },
        "StartAcademicYearRequest": {
            "type": "object",
            "properties": {
                "academic_year": {
                    "type": "string"
                },
                "start_date": {
                    "type": "string"
                },
                "end_date": {
                    "type": "string"
                },
                "terms": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/TermInput"
                    }
                }
            },
            "required": [
                "academic_year",
                "start_date",
                "end_date",
                "terms"
            ]
        },
        "CreateTermRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "academic_year": {
                    "type": "string"
                },
                "start_date": {
                    "type": "string"
                },
                "end_date": {
                    "type": "string"
                },
                "activate": {
                    "type": "boolean"
                }
            },
            "required": [
                "name",
                "academic_year",
                "start_date",
                "end_date"
            ]
        },
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "first_name": {
                    "type": "string"
                },
                "middle_name": {
                    "type": "string"
                },
                "last_name": {
                    "type": "string"
                },
                "gender": {
                    "type": "string",
                    "enum": [
                        "Male",
                        "Female"
                    ]
                },
                "date_of_birth": {
                    "type": "string"
                },
                "current_class": {
                    "type": "string"
                },
                "level": {
                    "type": "string"
                },
                "guardian_email": {
                    "type": "string"
                },
                "admission_date": {
                    "type": "string"
                }
            },
            "required": [
                "first_name",
                "last_name",
                "gender",
                "date_of_birth",
                "current_class"
            ]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
            }
        },
        "TermInput": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "start_date": {
                    "type": "string"
                },
                "end_date": {
                    "type": "string"
                },
                "is_active": {
                    "type": "boolean"
                }
            },
            "required": [
                "name",
                "start_date",
                "end_date"
            ]
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
