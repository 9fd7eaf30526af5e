package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Aula Admin API",
        "description": "Admin backend for commissions, enrollments and account provisioning",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Commissions", "description": "Capacity-limited course sections"},
        {"name": "Enrollments", "description": "Student enrollment lifecycle"},
        {"name": "Provisioning", "description": "One-stop account creation flows"},
        {"name": "Teachers", "description": "Teacher accounts"},
        {"name": "Credentials", "description": "Pending temporary credentials"}
    ],
    "paths": {
        "/commissions": {
            "get": {
                "tags": ["Commissions"],
                "summary": "List commissions",
                "parameters": [
                    {"name": "productId", "in": "query", "type": "string"},
                    {"name": "houseId", "in": "query", "type": "string"},
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Commissions"],
                "summary": "Create commission",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCommissionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/commissions/{id}": {
            "get": {
                "tags": ["Commissions"],
                "summary": "Get commission detail with seat availability",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Commissions"],
                "summary": "Update commission",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCommissionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Commissions"],
                "summary": "Deactivate commission",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Deactivated, with the count of enrollments still attached", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/commissions/{id}/roster": {
            "get": {
                "tags": ["Commissions"],
                "summary": "Export commission roster as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV payload"}
                }
            }
        },
        "/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments",
                "parameters": [
                    {"name": "commissionId", "in": "query", "type": "string"},
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "state", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll one or more students into a commission",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Insufficient capacity or duplicate enrollment", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Commission inactive", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}/state": {
            "put": {
                "tags": ["Enrollments"],
                "summary": "Transition an enrollment state",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateEnrollmentStateRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/enrollments/{id}": {
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Remove an enrollment row",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/provisioning/students": {
            "post": {
                "tags": ["Provisioning"],
                "summary": "Create students under a guardian, minting credentials",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProvisionStudentsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/provisioning/enroll": {
            "post": {
                "tags": ["Provisioning"],
                "summary": "Create a student and enroll it into a commission atomically",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProvisionAndEnrollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Insufficient capacity", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Commission inactive", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Provisioning"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "guardianId", "in": "query", "type": "string"},
                    {"name": "houseId", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Provisioning"],
                "summary": "Get student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List teachers",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Teachers"],
                "summary": "Provision a teacher account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTeacherRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/{id}": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Get teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/credentials/pending": {
            "get": {
                "tags": ["Credentials"],
                "summary": "List accounts still holding a temporary password",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/credentials/pending/export": {
            "get": {
                "tags": ["Credentials"],
                "summary": "Export pending credentials as a printable PDF sheet",
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF payload"}
                }
            }
        }
    },
    "definitions": {
        "CreateCommissionRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "product_id": {"type": "string"},
                "house_id": {"type": "string"},
                "teacher_id": {"type": "string"},
                "max_seats": {"type": "integer"},
                "schedule": {"type": "string"},
                "starts_on": {"type": "string"},
                "ends_on": {"type": "string"}
            },
            "required": ["name", "product_id"]
        },
        "UpdateCommissionRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "max_seats": {"type": "integer"},
                "unlimited": {"type": "boolean"},
                "schedule": {"type": "string"},
                "starts_on": {"type": "string"},
                "ends_on": {"type": "string"},
                "active": {"type": "boolean"},
                "house_id": {"type": "string"},
                "teacher_id": {"type": "string"}
            }
        },
        "EnrollRequest": {
            "type": "object",
            "properties": {
                "commission_id": {"type": "string"},
                "student_ids": {"type": "array", "items": {"type": "string"}},
                "initial_state": {"type": "string", "enum": ["PENDING", "CONFIRMED"]},
                "notes": {"type": "string"}
            },
            "required": ["commission_id", "student_ids"]
        },
        "UpdateEnrollmentStateRequest": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "enum": ["PENDING", "CONFIRMED", "CANCELLED"]},
                "notes": {"type": "string"}
            },
            "required": ["state"]
        },
        "GuardianInput": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "dni": {"type": "string"}
            },
            "required": ["first_name", "last_name"]
        },
        "StudentInput": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "age": {"type": "integer"},
                "school_level": {"type": "string"},
                "email": {"type": "string"},
                "house_id": {"type": "string"}
            },
            "required": ["first_name", "last_name", "age", "school_level"]
        },
        "ProvisionStudentsRequest": {
            "type": "object",
            "properties": {
                "guardian": {"$ref": "#/definitions/GuardianInput"},
                "students": {"type": "array", "items": {"$ref": "#/definitions/StudentInput"}}
            },
            "required": ["guardian", "students"]
        },
        "ProvisionAndEnrollRequest": {
            "type": "object",
            "properties": {
                "commission_id": {"type": "string"},
                "guardian": {"$ref": "#/definitions/GuardianInput"},
                "student": {"$ref": "#/definitions/StudentInput"},
                "notes": {"type": "string"}
            },
            "required": ["commission_id", "guardian", "student"]
        },
        "CreateTeacherRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "expertise": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["first_name", "last_name", "email"]
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
                "status": {"type": "integer"},
                "details": {"type": "object"}
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
