package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("API_URL", "")
	t.Setenv("VITE_API_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "houseme", cfg.Database)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, "https://house-me.vercel.app", cfg.WebAppURL)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, int64(500), cfg.ReferralBonus)
	assert.Equal(t, "webhook", cfg.Mode)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
}

func TestLoad_APIURLFallsBackToVite(t *testing.T) {
	setRequired(t)
	t.Setenv("API_URL", "")
	t.Setenv("VITE_API_URL", "https://api.example.com/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIURL)
}

func TestLoad_APIURLWins(t *testing.T) {
	setRequired(t)
	t.Setenv("API_URL", "https://primary.example.com")
	t.Setenv("VITE_API_URL", "https://secondary.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://primary.example.com", cfg.APIURL)
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	_, err := Load()
	assert.ErrorContains(t, err, "BOT_TOKEN")
}

func TestLoad_MissingMongoURI(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("MONGO_URI", "")

	_, err := Load()
	assert.ErrorContains(t, err, "MONGO_URI")
}

func TestLoad_InvalidMode(t *testing.T) {
	setRequired(t)
	t.Setenv("BOT_MODE", "carrier-pigeon")

	_, err := Load()
	assert.ErrorContains(t, err, "BOT_MODE")
}
