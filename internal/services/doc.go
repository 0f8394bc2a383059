// Package services contains the business logic layer between HTTP transport
// and the survey processing pipeline.
//
// SurveyService owns the lifecycle of uploaded survey exports: bounded read,
// content-hash memoization, header detection, role-column classification and
// report rendering. ConclusionsStore keeps the operator-written closing text
// per upload. HealthService reports liveness and readiness for the HTTP
// health endpoints.
//
// All state is in-memory and session-scoped; nothing is persisted across
// restarts.
package services
