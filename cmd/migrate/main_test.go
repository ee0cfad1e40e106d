package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/config"
)

func TestDatabaseURL(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: "3306", User: "news", Password: "p@ss", Name: "newsdesk"}

	got, err := databaseURL(config.StoreMySQL, c)
	require.NoError(t, err)
	assert.Equal(t, "mysql://news:p@ss@tcp(db:3306)/newsdesk?multiStatements=true", got)

	c.Port = "5432"
	got, err = databaseURL(config.StorePostgres, c)
	require.NoError(t, err)
	assert.Equal(t, "postgres://news:p%40ss@db:5432/newsdesk?sslmode=disable", got)

	_, err = databaseURL(config.StoreMongo, c)
	assert.Error(t, err)
}
