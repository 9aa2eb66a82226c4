// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with `swag init` after changing handler annotations.
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
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Published feed",
                "parameters": [
                    {"type": "string", "description": "Page number", "name": "page", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.Response"}}}
            }
        },
        "/search/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Search published posts",
                "parameters": [
                    {"type": "string", "description": "Query", "name": "q", "in": "query"},
                    {"type": "string", "description": "Page number", "name": "page", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.Response"}}}
            }
        },
        "/new/": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Create a post",
                "parameters": [
                    {"description": "Post", "name": "post", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreatePostRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/controllers.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/controllers.Response"}}
                }
            }
        },
        "/{handle}/{slug}/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Post with comments",
                "parameters": [
                    {"type": "string", "description": "@username", "name": "handle", "in": "path", "required": true},
                    {"type": "string", "description": "Post slug", "name": "slug", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.Response"}},
                    "302": {"description": "Login required", "schema": {"$ref": "#/definitions/controllers.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/controllers.Response"}}
                }
            }
        },
        "/{handle}/{slug}/like/": {
            "post": {
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Toggle the current user's like",
                "parameters": [
                    {"type": "string", "description": "@username", "name": "handle", "in": "path", "required": true},
                    {"type": "string", "description": "Post slug", "name": "slug", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.LikeState"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/controllers.Response"}}
                }
            }
        },
        "/posts/{slug}/comment/add/": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["comments"],
                "summary": "Comment on a published post",
                "parameters": [
                    {"type": "string", "description": "Post slug", "name": "slug", "in": "path", "required": true},
                    {"description": "Comment", "name": "comment", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateCommentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/controllers.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/controllers.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/controllers.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/controllers.Response"}}
                }
            }
        },
        "/contact/": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["contact"],
                "summary": "Send a contact message",
                "parameters": [
                    {"description": "Message", "name": "message", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateContactRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/controllers.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/controllers.Response"}}
                }
            }
        }
    },
    "definitions": {
        "controllers.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "errors": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}},
                "form": {},
                "level": {"type": "string"},
                "message": {"type": "string"},
                "redirect": {"type": "string"}
            }
        },
        "services.LikeState": {
            "type": "object",
            "properties": {
                "like_count": {"type": "integer"},
                "liked": {"type": "boolean"}
            }
        },
        "models.CreatePostRequest": {
            "type": "object",
            "required": ["title", "content"],
            "properties": {
                "title": {"type": "string", "maxLength": 255},
                "content": {"type": "string"},
                "status": {"type": "string", "enum": ["drafted", "published", "archived"]},
                "tags_input": {"type": "string", "maxLength": 1000}
            }
        },
        "models.CreateCommentRequest": {
            "type": "object",
            "required": ["content"],
            "properties": {
                "content": {"type": "string", "maxLength": 2000}
            }
        },
        "models.CreateContactRequest": {
            "type": "object",
            "required": ["name", "email", "message"],
            "properties": {
                "name": {"type": "string", "maxLength": 100},
                "email": {"type": "string"},
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Quill Blog API",
	Description:      "A blog with posts, tags, likes, comments, search and user profiles",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
