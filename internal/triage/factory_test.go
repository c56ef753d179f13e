package triage

import (
	"testing"

	"github.com/spec-kit/supportops/internal/config"
)

func TestNewGenerator(t *testing.T) {
	if gen := NewGenerator(config.AIConfig{Provider: config.AIProviderNone}); gen != nil {
		t.Errorf("none provider returned %T", gen)
	}
	if _, ok := NewGenerator(config.AIConfig{Provider: config.AIProviderHuggingFace, ModelURL: "http://model"}).(*HuggingFace); !ok {
		t.Error("huggingface provider should build *HuggingFace")
	}
	if _, ok := NewGenerator(config.AIConfig{Provider: config.AIProviderOpenAI, APIToken: "sk", OpenAIModel: "m"}).(*OpenAI); !ok {
		t.Error("openai provider should build *OpenAI")
	}
}
