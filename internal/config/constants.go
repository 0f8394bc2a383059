package config

// Application metadata
const (
	AppName    = "AlumniPulse"
	AppVersion = "1.0.0"
)

// ReportFilePrefix names CSV exports written without an explicit filename.
const ReportFilePrefix = "informe"
