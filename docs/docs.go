// Package docs registers the OpenAPI description served under /swagger.
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
        "/v1/segment": {
            "post": {
                "description": "Splits a transcript into episodes and attributes speakers without touching audio",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transcripts"],
                "summary": "Segment an utterance list",
                "parameters": [
                    {
                        "description": "Utterances, optional tracks and duration",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/transcript.SegmentRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/transcript.SegmentResultResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/v1/transcripts": {
            "get": {
                "description": "Pages through the run catalog; requires the database to be enabled",
                "produces": ["application/json"],
                "tags": ["transcripts"],
                "summary": "List processed transcripts",
                "parameters": [
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/transcript.TranscriptListResponse"}},
                    "501": {"description": "Not Implemented", "schema": {"type": "object", "additionalProperties": true}}
                }
            },
            "post": {
                "description": "Produces the transcript of a file in the audio directory and stores the rendered episodes",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transcripts"],
                "summary": "Transcribe and segment an audio file",
                "parameters": [
                    {
                        "description": "Audio path relative to the audio directory",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/transcript.ProcessRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/transcript.ProcessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": true}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/v1/transcripts/combined": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["transcripts"],
                "summary": "Combine all stored transcripts",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}}
                }
            }
        },
        "/v1/transcripts/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["transcripts"],
                "summary": "Get a stored transcript",
                "parameters": [
                    {"type": "string", "description": "Transcript object name", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/transcript.TranscriptTextResponse"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        }
    },
    "definitions": {
        "common.PaginationResponse": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_items": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "transcript.ProcessRequest": {
            "type": "object",
            "required": ["audio_path"],
            "properties": {
                "audio_path": {"type": "string"},
                "force": {"type": "boolean"}
            }
        },
        "transcript.ProcessResponse": {
            "type": "object",
            "properties": {
                "audio_path": {"type": "string"},
                "backend": {"type": "string"},
                "duration_seconds": {"type": "number"},
                "episodes": {"type": "integer"},
                "object_name": {"type": "string"},
                "processing_time_ms": {"type": "integer"},
                "skipped": {"type": "boolean"},
                "text": {"type": "string"}
            }
        },
        "transcript.SegmentRequest": {
            "type": "object",
            "required": ["utterances"],
            "properties": {
                "audio_duration": {"type": "number"},
                "tracks": {"type": "array", "items": {"$ref": "#/definitions/transcript.TrackInput"}},
                "utterances": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/transcript.UtteranceInput"}}
            }
        },
        "transcript.SegmentResponse": {
            "type": "object",
            "properties": {
                "announcement": {"type": "string"},
                "boundary_evidence": {"type": "array", "items": {"type": "string"}},
                "duration_seconds": {"type": "number"},
                "end": {"type": "integer"},
                "oversized": {"type": "boolean"},
                "speakers": {"type": "array", "items": {"type": "string"}},
                "start": {"type": "integer"},
                "utterances": {"type": "array", "items": {"$ref": "#/definitions/transcript.UtteranceResponse"}}
            }
        },
        "transcript.SegmentResultResponse": {
            "type": "object",
            "properties": {
                "segments": {"type": "array", "items": {"$ref": "#/definitions/transcript.SegmentResponse"}},
                "text": {"type": "string"}
            }
        },
        "transcript.TrackInput": {
            "type": "object",
            "required": ["track_id"],
            "properties": {
                "end_time": {"type": "number"},
                "start_time": {"type": "number"},
                "track_id": {"type": "string"}
            }
        },
        "transcript.TranscriptListResponse": {
            "type": "object",
            "properties": {
                "pagination": {"$ref": "#/definitions/common.PaginationResponse"},
                "transcripts": {"type": "array", "items": {"$ref": "#/definitions/transcript.TranscriptSummaryResponse"}}
            }
        },
        "transcript.TranscriptSummaryResponse": {
            "type": "object",
            "properties": {
                "backend": {"type": "string"},
                "created_at": {"type": "string"},
                "duration_seconds": {"type": "number"},
                "episode_count": {"type": "integer"},
                "has_tracks": {"type": "boolean"},
                "id": {"type": "string"},
                "language": {"type": "string"},
                "object_name": {"type": "string"},
                "processing_time_ms": {"type": "integer"},
                "source_file": {"type": "string"},
                "speakers": {"type": "array", "items": {"type": "string"}}
            }
        },
        "transcript.TranscriptTextResponse": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "transcript.UtteranceInput": {
            "type": "object",
            "required": ["text"],
            "properties": {
                "end_time": {"type": "number"},
                "language": {"type": "string", "enum": ["primary", "narrator", "unknown"]},
                "start_time": {"type": "number"},
                "text": {"type": "string"}
            }
        },
        "transcript.UtteranceResponse": {
            "type": "object",
            "properties": {
                "end_time": {"type": "number"},
                "index": {"type": "integer"},
                "language": {"type": "string"},
                "speaker": {"type": "string"},
                "start_time": {"type": "number"},
                "text": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the API key.",
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
	Title:            "Radio Transcriber API",
	Description:      "Episode segmentation and speaker attribution for Spanish radio transcripts",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
