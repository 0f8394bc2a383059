// Package http implements HTTP request handlers for the alumni survey
// report service. It is a thin layer between HTTP transport and the service
// layer: handlers parse requests, delegate to services, and translate
// service errors into RFC 7807 problem responses.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/survey/missing-columns",
//	    "title": "Unprocessable Entity",
//	    "status": 422,
//	    "detail": "Program and graduation-year columns not found",
//	    "instance": "/api/surveys"
//	}
package http
