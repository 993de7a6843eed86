package main

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
)

// TestMain picks up a local .env so integration credentials reach the tests.
func TestMain(m *testing.M) {
	_ = godotenv.Load()
	os.Exit(m.Run())
}
