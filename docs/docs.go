// Package docs 收件箱 API 的 OpenAPI 描述，由 swag 注册供 gin-swagger 读取
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
        "/api/v1/inbox": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["收件箱"],
                "summary": "查询跨角色收件箱",
                "parameters": [
                    {"type": "integer", "default": 1, "description": "页码", "name": "page", "in": "query"},
                    {"type": "integer", "default": 50, "description": "每页数量", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/response.Response"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/handler.inboxPage"}}}
                            ]
                        }
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "summary": "存活探针",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        }
    },
    "definitions": {
        "handler.inboxPage": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "list": {"type": "array", "items": {"$ref": "#/definitions/service.InboxRow"}}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "data": {}
            }
        },
        "service.InboxRow": {
            "type": "object",
            "properties": {
                "quote_id": {"type": "string"},
                "label": {"type": "string"},
                "role": {"type": "string", "enum": ["customer", "supplier", "admin"]},
                "last_message_at": {"type": "string", "format": "date-time"},
                "last_message_preview": {"type": "string"},
                "needs_reply_from": {"type": "string", "enum": ["customer", "supplier", "admin", "none", "unknown"]},
                "unread_count": {"type": "integer"},
                "status": {"type": "string"},
                "has_winner": {"type": "boolean"},
                "kickoff_status": {"type": "string", "enum": ["n/a", "not_started", "in_progress", "complete"]}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo 运行时可覆盖 Host 等字段
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Quote Inbox API",
	Description:      "询价单跨角色收件箱与回复义务推断",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
