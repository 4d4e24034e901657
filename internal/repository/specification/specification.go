package specification

import "gorm.io/gorm"

// Specification defines the interface for query specifications
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// Matcher is implemented by specifications that can also filter records
// held outside the database (the in-memory repositories).
type Matcher interface {
	Match(record interface{}) bool
}
