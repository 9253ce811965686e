package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Exam Allocation API",
        "description": "Exam timetable generation, hall seating and invigilator assignment",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Exam Schedules", "description": "Timetable proposals and exam cycles"},
        {"name": "Seating", "description": "Hall seating and invigilators"},
        {"name": "Ops", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Ops"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "tags": ["Ops"],
                "summary": "Readiness check",
                "responses": {"200": {"description": "Ready"}, "503": {"description": "Not ready"}}
            }
        },
        "/exam-schedules/generate": {
            "post": {
                "tags": ["Exam Schedules"],
                "summary": "Generate a timetable proposal",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateExamScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "No subjects or dates", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exam-schedules/override": {
            "post": {
                "tags": ["Exam Schedules"],
                "summary": "Move exams inside a proposal",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OverrideExamScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Proposal expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot clash", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exam-schedules/save": {
            "post": {
                "tags": ["Exam Schedules"],
                "summary": "Commit a proposal as an exam cycle",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveExamScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exam-cycles": {
            "get": {
                "tags": ["Exam Schedules"],
                "summary": "List exam cycles",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exam-cycles/{id}": {
            "delete": {
                "tags": ["Exam Schedules"],
                "summary": "Delete a pending exam cycle",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}, "409": {"description": "Cycle already finalized"}}
            }
        },
        "/exam-cycles/{id}/exams": {
            "get": {
                "tags": ["Exam Schedules"],
                "summary": "List scheduled exams of a cycle",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exam-cycles/{id}/violations": {
            "get": {
                "tags": ["Exam Schedules"],
                "summary": "List recorded violations of a cycle",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exam-cycles/{id}/finalize": {
            "post": {
                "tags": ["Exam Schedules"],
                "summary": "Mark a cycle finalized",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exam-cycles/{id}/seating": {
            "post": {
                "tags": ["Seating"],
                "summary": "Seat every slot of an exam cycle",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/AllocateCycleSeatingRequest"}}
                ],
                "responses": {
                    "200": {"description": "Seated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seating/preview": {
            "post": {
                "tags": ["Seating"],
                "summary": "Allocate an ad-hoc roster without persisting",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SeatingPreviewRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/seating": {
            "get": {
                "tags": ["Seating"],
                "summary": "Stored seating for one slot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "session", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "No seating for slot"}}
            }
        }
    },
    "definitions": {
        "GenerateExamScheduleRequest": {
            "type": "object",
            "required": ["category", "year", "parity", "startDate", "endDate"],
            "properties": {
                "name": {"type": "string"},
                "category": {"type": "string", "enum": ["SEMESTER", "INTERNAL"]},
                "year": {"type": "integer", "minimum": 1, "maximum": 8},
                "parity": {"type": "string", "enum": ["ODD", "EVEN"]},
                "startDate": {"type": "string", "example": "15.12.2025"},
                "endDate": {"type": "string", "example": "31.12.2025"},
                "holidays": {"type": "array", "items": {"type": "string"}},
                "policy": {"type": "string", "enum": ["GAP_CONSTRAINED", "ROUND_ROBIN", "FIXED_SLOT"]},
                "weekendMode": {"type": "string", "enum": ["SUNDAY", "SATURDAY_SUNDAY"]}
            }
        },
        "ExamOverride": {
            "type": "object",
            "required": ["subjectId", "date", "session"],
            "properties": {
                "subjectId": {"type": "string"},
                "track": {"type": "string", "enum": ["REGULAR", "ARREAR"]},
                "date": {"type": "string"},
                "session": {"type": "string", "enum": ["FN", "AN", "SINGLE"]}
            }
        },
        "OverrideExamScheduleRequest": {
            "type": "object",
            "required": ["proposalId", "overrides"],
            "properties": {
                "proposalId": {"type": "string"},
                "overrides": {"type": "array", "items": {"$ref": "#/definitions/ExamOverride"}}
            }
        },
        "SaveExamScheduleRequest": {
            "type": "object",
            "required": ["proposalId"],
            "properties": {
                "proposalId": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "AllocateCycleSeatingRequest": {
            "type": "object",
            "properties": {
                "mode": {"type": "string", "enum": ["ONE_PER_BENCH", "TWO_PER_BENCH"]},
                "hallIds": {"type": "array", "items": {"type": "string"}},
                "teacherIds": {"type": "array", "items": {"type": "string"}}
            }
        },
        "SeatingPreviewRequest": {
            "type": "object",
            "required": ["date", "session", "mode", "students", "halls"],
            "properties": {
                "date": {"type": "string"},
                "session": {"type": "string", "enum": ["FN", "AN", "SINGLE"]},
                "mode": {"type": "string", "enum": ["ONE_PER_BENCH", "TWO_PER_BENCH"]},
                "students": {"type": "array", "items": {"type": "object"}},
                "halls": {"type": "array", "items": {"type": "object"}},
                "teachers": {"type": "array", "items": {"type": "string"}},
                "seed": {"type": "integer"}
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
