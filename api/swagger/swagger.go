package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Certificate Registry API",
        "description": "Employee certificate registry with exam workflow and HR administration",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Directory login"},
        {"name": "Users", "description": "Directory and profiles"},
        {"name": "Certificates", "description": "Registry operations and exam workflow"},
        {"name": "Render", "description": "Shareable certificate documents"},
        {"name": "Public", "description": "Unauthenticated verification"}
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
        "/api/v1/auth/users": {
            "get": {
                "tags": ["Auth"],
                "summary": "List directory users grouped by role",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Issue an access token for a directory identity",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown user", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List all users with profile overlays",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/profile/me": {
            "get": {
                "tags": ["Users"],
                "summary": "Get own merged profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Users"],
                "summary": "Replace own profile overlay",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProfileUpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/certificates": {
            "post": {
                "tags": ["Certificates"],
                "summary": "Register a certificate",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCertificateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/certificates/my": {
            "get": {
                "tags": ["Certificates"],
                "summary": "List own certificates",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/certificates/exam-requests": {
            "get": {
                "tags": ["Certificates"],
                "summary": "List certificates queued for the viewer as examiner",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/certificates/team": {
            "get": {
                "tags": ["Certificates"],
                "summary": "List team or controlled-module certificates",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/certificates/{id}": {
            "get": {
                "tags": ["Certificates"],
                "summary": "Get one certificate",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Certificates"],
                "summary": "Edit presentational fields (HR)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCertificateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Certificates"],
                "summary": "Permanently remove a certificate (HR)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/certificates/{id}/exam": {
            "post": {
                "tags": ["Certificates"],
                "summary": "Record an exam result as the assigned examiner",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExamResultRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unrecognized grade", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/certificates/{id}/revoke": {
            "post": {
                "tags": ["Certificates"],
                "summary": "Revoke a certificate (HR)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RevokeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/certificates/{id}/unrevoke": {
            "post": {
                "tags": ["Certificates"],
                "summary": "Restore a revoked certificate (HR)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/certificates/{id}/image": {
            "get": {
                "tags": ["Render"],
                "summary": "Render the certificate as an SVG card",
                "security": [{"BearerAuth": []}],
                "produces": ["image/svg+xml"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "SVG document"}
                }
            }
        },
        "/api/v1/certificates/{id}/pdf": {
            "get": {
                "tags": ["Render"],
                "summary": "Render the certificate as a printable PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        },
        "/api/v1/certificates/{id}/qr": {
            "get": {
                "tags": ["Render"],
                "summary": "Render the verification QR code",
                "security": [{"BearerAuth": []}],
                "produces": ["image/png"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "PNG image"}
                }
            }
        },
        "/api/v1/public/certificates/{id}/status": {
            "get": {
                "tags": ["Public"],
                "summary": "Check certificate validity without authentication",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["user_id"],
            "properties": {
                "user_id": {"type": "integer"}
            }
        },
        "ProfileUpdateRequest": {
            "type": "object",
            "required": ["full_name", "position", "module"],
            "properties": {
                "full_name": {"type": "string"},
                "position": {"type": "string"},
                "module": {"type": "string"},
                "manager_id": {"type": "integer"},
                "controlled_module": {"type": "string"}
            }
        },
        "CreateCertificateRequest": {
            "type": "object",
            "required": ["name", "cert_type", "issued_at"],
            "properties": {
                "name": {"type": "string"},
                "cert_type": {"type": "string", "enum": ["external", "internal"]},
                "topic": {"type": "string"},
                "issued_at": {"type": "string", "format": "date"},
                "expires_at": {"type": "string", "format": "date"},
                "is_perpetual": {"type": "boolean"}
            }
        },
        "UpdateCertificateRequest": {
            "type": "object",
            "required": ["name", "issued_at"],
            "properties": {
                "name": {"type": "string"},
                "issued_at": {"type": "string", "format": "date"},
                "expires_at": {"type": "string", "format": "date"},
                "is_perpetual": {"type": "boolean"},
                "topic": {"type": "string"}
            }
        },
        "ExamResultRequest": {
            "type": "object",
            "required": ["grade"],
            "properties": {
                "grade": {"type": "string"},
                "exam_date": {"type": "string", "format": "date"}
            }
        },
        "RevokeRequest": {
            "type": "object",
            "required": ["reason"],
            "properties": {
                "reason": {"type": "string"}
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
