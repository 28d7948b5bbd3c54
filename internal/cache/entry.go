package cache

import "time"

// Entry represents one cached compile-unit result.
type Entry struct {
	// Hash is the unique identifier for this cache entry
	// Computed from: source contents + classpath + module path + options + destination
	Hash string `json:"hash"`

	// Unit is the compile unit name, "main" or "test"
	Unit string `json:"unit"`

	// Destination is the build output directory the unit compiled to
	Destination string `json:"destination"`

	// Outputs lists the produced class files, relative to Destination
	Outputs []string `json:"outputs"`

	// Timestamp when this entry was created
	Timestamp time.Time `json:"timestamp"`

	// Success indicates if the compilation was successful
	Success bool `json:"success"`
}
