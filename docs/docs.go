// Package docs registra el documento OpenAPI que sirve /swagger.
// Regenerar con: swag init -g cmd/api/main.go -o docs
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
        "/reminders": {
            "get": {
                "description": "Devuelve todos los recordatorios ordenados por próxima toma.",
                "produces": ["application/json"],
                "tags": ["reminders"],
                "summary": "Listar recordatorios",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/reminders.Reminder"}}},
                    "500": {"description": "could not load reminders", "schema": {"type": "string"}}
                }
            },
            "post": {
                "description": "Alta manual. nextDue = ahora + frequency horas.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reminders"],
                "summary": "Crear recordatorio manual",
                "parameters": [
                    {"description": "Datos del recordatorio", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/reminders.createReminderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/reminders.Reminder"}},
                    "400": {"description": "invalid reminder", "schema": {"type": "string"}}
                }
            },
            "delete": {
                "tags": ["reminders"],
                "summary": "Borrar todos los recordatorios",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/reminders/batch": {
            "post": {
                "description": "Crea un recordatorio por medicina confirmada; repetir el mismo scanId no duplica.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reminders"],
                "summary": "Crear recordatorios desde un scan",
                "parameters": [
                    {"description": "Medicinas confirmadas", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/reminders.createBatchRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "array", "items": {"$ref": "#/definitions/reminders.Reminder"}}},
                    "400": {"description": "invalid reminder", "schema": {"type": "string"}}
                }
            }
        },
        "/reminders/{reminderID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reminders"],
                "summary": "Ver recordatorio",
                "parameters": [{"type": "string", "description": "Reminder ID", "name": "reminderID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/reminders.Reminder"}},
                    "404": {"description": "reminder not found", "schema": {"type": "string"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reminders"],
                "summary": "Editar recordatorio",
                "parameters": [
                    {"type": "string", "description": "Reminder ID", "name": "reminderID", "in": "path", "required": true},
                    {"description": "Campos a cambiar", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/reminders.updateReminderRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/reminders.Reminder"}},
                    "400": {"description": "invalid reminder", "schema": {"type": "string"}},
                    "404": {"description": "reminder not found", "schema": {"type": "string"}}
                }
            },
            "delete": {
                "tags": ["reminders"],
                "summary": "Borrar recordatorio",
                "parameters": [{"type": "string", "description": "Reminder ID", "name": "reminderID", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "reminder not found", "schema": {"type": "string"}}
                }
            }
        },
        "/scans": {
            "post": {
                "description": "Sube la foto (campo multipart \"image\"), extrae el texto y lo convierte en medicinas.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["scans"],
                "summary": "Escanear receta",
                "parameters": [{"type": "file", "description": "Foto de la receta", "name": "image", "in": "formData", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/scans.Result"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/scans.errorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/scans.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/scans.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/scans.errorResponse"}}
                }
            }
        },
        "/scans/text": {
            "post": {
                "description": "Corre solo el parser sobre texto ya extraído.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["scans"],
                "summary": "Interpretar texto de receta",
                "parameters": [{"description": "Texto", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/scans.parseTextRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/scans.Result"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/scans.errorResponse"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Últimos avisos in-app",
                "parameters": [{"type": "integer", "description": "Máximo a devolver", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/notify.Toast"}}}}
            }
        },
        "/notifications/permission": {
            "get": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Estado del permiso de notificaciones",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/notify.permissionResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Conceder o negar el permiso",
                "parameters": [{"description": "Permiso", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/notify.permissionRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/notify.permissionResponse"}},
                    "400": {"description": "granted is required", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "medicines.MedicineDetails": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "dosage": {"type": "string"},
                "frequency": {"type": "string", "example": "twice daily"},
                "duration": {"type": "integer", "example": 5},
                "notes": {"type": "string"}
            }
        },
        "reminders.Reminder": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "medicineName": {"type": "string"},
                "dosage": {"type": "string"},
                "frequency": {"type": "integer", "example": 12},
                "nextDue": {"type": "string", "format": "date-time"},
                "duration": {"type": "integer"},
                "notes": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "reminders.createReminderRequest": {
            "type": "object",
            "properties": {
                "medicineName": {"type": "string"},
                "dosage": {"type": "string"},
                "frequency": {"type": "integer"},
                "duration": {"type": "integer"},
                "notes": {"type": "string"}
            }
        },
        "reminders.createBatchRequest": {
            "type": "object",
            "properties": {
                "scanId": {"type": "string"},
                "medicines": {"type": "array", "items": {"$ref": "#/definitions/medicines.MedicineDetails"}}
            }
        },
        "reminders.updateReminderRequest": {
            "type": "object",
            "properties": {
                "medicineName": {"type": "string"},
                "dosage": {"type": "string"},
                "frequency": {"type": "integer"},
                "duration": {"type": "integer"},
                "notes": {"type": "string"},
                "nextDue": {"type": "string", "format": "date-time"}
            }
        },
        "scans.Result": {
            "type": "object",
            "properties": {
                "scanId": {"type": "string"},
                "source": {"type": "string", "enum": ["ocr", "sample", "text"]},
                "rawText": {"type": "string"},
                "strategy": {"type": "string"},
                "medicines": {"type": "array", "items": {"$ref": "#/definitions/medicines.MedicineDetails"}},
                "quotaExceeded": {"type": "boolean"},
                "empty": {"type": "boolean"},
                "offerManualEntry": {"type": "boolean"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "scans.parseTextRequest": {
            "type": "object",
            "properties": {"text": {"type": "string"}}
        },
        "scans.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "retryable": {"type": "boolean"}
            }
        },
        "notify.Toast": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "message": {"$ref": "#/definitions/notify.Message"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "notify.Message": {
            "type": "object",
            "properties": {
                "reminderId": {"type": "string"},
                "title": {"type": "string"},
                "body": {"type": "string"},
                "link": {"type": "string"}
            }
        },
        "notify.permissionRequest": {
            "type": "object",
            "properties": {"granted": {"type": "boolean"}}
        },
        "notify.permissionResponse": {
            "type": "object",
            "properties": {"state": {"type": "string", "enum": ["default", "granted", "denied"]}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Prescription Reminder API",
	Description:      "Escaneo de recetas y recordatorios de medicación.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
