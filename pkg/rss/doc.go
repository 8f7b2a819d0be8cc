// Package rss defines the records exchanged with the RSS aggregation backend.
//
// The types mirror the backend's JSON payloads field for field: companies
// publish feeds, feeds are ingested into sources (individual articles), and
// the admin endpoints return summaries of sync, check and ingest runs.
// Optional backend fields are plain strings or pointers; an empty string and
// a JSON null are treated alike.
package rss
