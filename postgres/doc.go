// Package postgres reads creator profiles from the Postgres schema shared with
// the onboarding and research pipelines.
//
// Store implements profile.Store with gorm. It never writes: the tables are
// owned by other services, and Migrate exists only to stand up a local or test
// database with the same shape.
package postgres
