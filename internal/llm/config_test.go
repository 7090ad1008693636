package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.0-flash", config.Model)
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel("custom-model")

	// Original should be unchanged
	assert.Equal(t, DefaultModel, config.Model)
	assert.Equal(t, "custom-model", newConfig.Model)
	assert.Equal(t, ProviderGemini, newConfig.Provider)
}

func TestWithModel_EmptyKeepsCurrent(t *testing.T) {
	config := DefaultConfig().WithModel("")
	assert.Equal(t, DefaultModel, config.Model)
}

func TestProviderConstants(t *testing.T) {
	assert.Equal(t, Provider("gemini"), ProviderGemini)
}
