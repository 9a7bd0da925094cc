package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Chamada API",
        "description": "Attendance recording and statistics for school roll calls",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Dashboard", "description": "Attendance dashboard bundle"},
        {"name": "Statistics", "description": "Per-class and per-student attendance statistics"},
        {"name": "Attendance", "description": "Roll-call recording"},
        {"name": "Exports", "description": "Class absence reports"}
    ],
    "paths": {
        "/dashboard/stats": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Attendance dashboard statistics",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Dashboard unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/statistics/classes": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Attendance statistics per class",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/statistics/absentees": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Students with repeated absences",
                "parameters": [
                    {"name": "minFaltas", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/statistics/weekly-risk": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Students at risk over the last business days",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List attendance records",
                "parameters": [
                    {"name": "turmaId", "in": "query", "type": "string"},
                    {"name": "alunoId", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "type": "string", "format": "date"},
                    {"name": "presente", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["asc", "desc"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Record one attendance entry",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordAttendanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already recorded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/roll-call": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Roll call of a class for a date",
                "parameters": [
                    {"name": "turmaId", "in": "query", "type": "string", "required": true},
                    {"name": "date", "in": "query", "type": "string", "format": "date", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Record a whole class roll call",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RollCallRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate in atomic mode", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/{id}": {
            "patch": {
                "tags": ["Attendance"],
                "summary": "Change the status of an attendance record",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Attendance"],
                "summary": "Delete an attendance record",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/attendance/{id}/justification": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Justify an absence",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/JustifyAbsenceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Record is not an absence", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/certificates": {
            "get": {
                "tags": ["Certificates"],
                "summary": "List a student's certificates",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Student not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Certificates"],
                "summary": "Register a certificate for a student",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCertificateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid range or description", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/certificates/{id}": {
            "patch": {
                "tags": ["Certificates"],
                "summary": "Edit a certificate or change its status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCertificateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/classes/{id}": {
            "post": {
                "tags": ["Exports"],
                "summary": "Export the monthly absence report of a class",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "year", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download an export via signed token",
                "security": [],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateCertificateRequest": {
            "type": "object",
            "required": ["data_inicio", "data_fim", "descricao"],
            "properties": {
                "data_inicio": {"type": "string", "format": "date"},
                "data_fim": {"type": "string", "format": "date"},
                "descricao": {"type": "string"}
            }
        },
        "UpdateCertificateRequest": {
            "type": "object",
            "properties": {
                "data_inicio": {"type": "string", "format": "date"},
                "data_fim": {"type": "string", "format": "date"},
                "descricao": {"type": "string"},
                "status": {"type": "string", "enum": ["pendente", "aprovado", "rejeitado"]}
            }
        },
        "RecordAttendanceRequest": {
            "type": "object",
            "properties": {
                "aluno_id": {"type": "string"},
                "turma_id": {"type": "string"},
                "data_chamada": {"type": "string", "format": "date"},
                "presente": {"type": "boolean"},
                "falta_justificada": {"type": "boolean"},
                "motivo": {"type": "string"}
            },
            "required": ["aluno_id", "turma_id", "data_chamada"]
        },
        "RollCallEntry": {
            "type": "object",
            "properties": {
                "aluno_id": {"type": "string"},
                "presente": {"type": "boolean"},
                "falta_justificada": {"type": "boolean"},
                "motivo": {"type": "string"}
            },
            "required": ["aluno_id"]
        },
        "RollCallRequest": {
            "type": "object",
            "properties": {
                "turma_id": {"type": "string"},
                "data_chamada": {"type": "string", "format": "date"},
                "mode": {"type": "string", "enum": ["atomic", "partialOnError"]},
                "presencas": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/RollCallEntry"}
                }
            },
            "required": ["turma_id", "data_chamada", "presencas"]
        },
        "UpdateAttendanceRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["presente", "falta", "falta_justificada"]},
                "motivo": {"type": "string"}
            },
            "required": ["status"]
        },
        "JustifyAbsenceRequest": {
            "type": "object",
            "properties": {
                "motivo": {"type": "string"}
            },
            "required": ["motivo"]
        },
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
