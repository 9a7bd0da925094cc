package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/chamada-api/pkg/config"
)

func TestDSNDefaultsSSLMode(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "chamada", Password: "secret", Name: "escola"})
	assert.Equal(t, "host=db port=5432 user=chamada password=secret dbname=escola sslmode=disable", dsn)
}

func TestDSNKeepsConfiguredSSLMode(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 6543, User: "u", Password: "p", Name: "n", SSLMode: "require"})
	assert.Contains(t, dsn, "port=6543")
	assert.Contains(t, dsn, "sslmode=require")
}
