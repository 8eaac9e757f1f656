package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionsDSN(t *testing.T) {
	dsn := Options{User: "hotel", Password: "s3cret", Host: "db", Port: "3306", Name: "hotel"}.DSN()
	assert.Contains(t, dsn, "hotel:s3cret@tcp(db:3306)/hotel?")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}
