package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable Generator API",
        "description": "Constraint-based weekly timetable generator for academic departments",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {
                        "description": "Ready"
                    }
                }
            }
        },
        "/api/v1/timetables/generate": {
            "post": {
                "summary": "Generate and persist SE/TE/BE timetables for a department",
                "tags": ["Scheduler"],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/v1/semester-schedules/generate-async": {
            "post": {
                "summary": "Queue timetable generation for a department/academic year",
                "tags": ["Scheduler"],
                "responses": {
                    "202": {
                        "description": "Accepted"
                    }
                }
            }
        },
        "/api/v1/semester-schedules": {
            "get": {
                "summary": "List stored timetable versions for a department/academic year/year",
                "tags": ["Scheduler"],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/v1/semester-schedules/{id}/slots": {
            "get": {
                "summary": "Get placed cells for a stored timetable version",
                "tags": ["Scheduler"],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/v1/semester-schedules/{id}": {
            "delete": {
                "summary": "Delete a draft timetable version",
                "tags": ["Scheduler"],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/api/v1/semester-schedules/{id}/export": {
            "post": {
                "summary": "Render a stored timetable as CSV or PDF",
                "tags": ["Scheduler"],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/v1/timetables/export/{token}": {
            "get": {
                "summary": "Download a previously rendered timetable export",
                "tags": ["Scheduler"],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
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
