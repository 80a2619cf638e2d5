// Package swagger registers the OpenAPI document of the HTTP API with swag.
// Keep it in line with the @Router annotations of the feature handlers.
package swagger

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
        "/accounts/audit": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Reconciles the archiver against every node store. Only mismatches are listed unless verbose is set.",
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Audit Accounts",
                "parameters": [
                    {"type": "boolean", "description": "Include matches and orphans", "name": "verbose", "in": "query"},
                    {"type": "boolean", "description": "Publish the report to storage", "name": "publish", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AuditReport"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/accounts/audit/refresh": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["accounts"],
                "summary": "Refresh Account Snapshot",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/accounts/reports": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "List Reports",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/storage.Object"}}},
                    "503": {"description": "Storage not configured", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/accounts/reports/{key}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Get Report",
                "parameters": [
                    {"type": "string", "description": "Object key", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AuditReport"}},
                    "404": {"description": "Key outside the report prefix", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/accounts/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Compares one account across the archiver and every node.",
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Lookup Account",
                "parameters": [
                    {"type": "string", "description": "Account ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AuditReport"}},
                    "404": {"description": "Account not found in any store", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/integrity": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Performs the store schema and report storage checks.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Run All Integrity Checks",
                "responses": {
                    "200": {"description": "Combined Report", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/integrity/storage": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Check Report Storage",
                "parameters": [
                    {"type": "boolean", "description": "Create the bucket and prefix when missing", "name": "fix", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/checks.BucketReport"}},
                    "503": {"description": "Storage not configured", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/integrity/stores": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Checks that the archiver and every node store carry the expected account table and columns.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Check Store Schemas",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/integrity.StoresReport"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "checks.BucketReport": {
            "type": "object",
            "properties": {
                "bucket": {"type": "string"},
                "bucket_exists": {"type": "boolean"},
                "prefix": {"type": "string"},
                "prefix_exists": {"type": "boolean"}
            }
        },
        "checks.TableReport": {
            "type": "object",
            "properties": {
                "missing_columns": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string"},
                "table": {"type": "string"},
                "type_mismatches": {"type": "array", "items": {"type": "string"}}
            }
        },
        "integrity.StoreReport": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "name": {"type": "string"},
                "path": {"type": "string"},
                "role": {"type": "string"},
                "table": {"$ref": "#/definitions/checks.TableReport"}
            }
        },
        "integrity.StoresReport": {
            "type": "object",
            "properties": {
                "matched": {"type": "boolean"},
                "stores": {"type": "array", "items": {"$ref": "#/definitions/integrity.StoreReport"}}
            }
        },
        "models.AuditReport": {
            "type": "object",
            "properties": {
                "archiver": {"type": "string"},
                "archiver_accounts": {"type": "integer"},
                "comparisons": {"type": "array", "items": {"$ref": "#/definitions/reconcile.Comparison"}},
                "generated_at": {"type": "string"},
                "nodes": {"type": "array", "items": {"$ref": "#/definitions/reconcile.SourceStat"}},
                "nodes_loaded": {"type": "integer"},
                "summary": {"$ref": "#/definitions/reconcile.Summary"},
                "verbose": {"type": "boolean"}
            }
        },
        "reconcile.Comparison": {
            "type": "object",
            "properties": {
                "balance_match": {"type": "boolean"},
                "canonical_balance": {"type": "string"},
                "canonical_nonce": {"type": "string"},
                "classification": {"type": "string", "enum": ["match", "mismatch", "orphan_canonical", "orphan_secondary"]},
                "id": {"type": "string"},
                "mismatch": {"type": "array", "items": {"type": "string"}},
                "nonce_match": {"type": "boolean"},
                "secondary_balance": {"type": "string"},
                "secondary_nonce": {"type": "string"},
                "source": {"type": "string"}
            }
        },
        "reconcile.SourceStat": {
            "type": "object",
            "properties": {
                "accounts": {"type": "integer"},
                "error": {"type": "string"},
                "name": {"type": "string"},
                "path": {"type": "string"}
            }
        },
        "reconcile.Summary": {
            "type": "object",
            "properties": {
                "match_rate": {"type": "number"},
                "matches": {"type": "integer"},
                "mismatches": {"type": "integer"},
                "orphan_canonical": {"type": "integer"},
                "orphan_secondary": {"type": "integer"},
                "total_comparisons": {"type": "integer"}
            }
        },
        "storage.Object": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "last_modified": {"type": "string"},
                "size": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "X-API-Key",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Account Audit API",
	Description:      "Audits archiver account state against the node stores.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
