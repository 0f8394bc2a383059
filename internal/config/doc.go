// Package config provides application configuration for AlumniPulse.
//
// Configuration comes from three layers, later layers winning:
//
//  1. Built-in defaults (struct tags and Default())
//  2. An optional config.yaml next to the executable or under configs/
//  3. Environment variables with the ALUMNI_ prefix
//
// The package also resolves the executable-relative directory layout
// (data/, data/reports/, data/cache/, logs/, web/) and loads the external
// question-set definition that drives report rendering.
package config
