package models

import "github.com/google/uuid"

// assignID gives rows an application-side UUID so inserts behave the same on
// Postgres and sqlite.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
