// Package provider maps provider names and model identifiers to concrete
// model.Model clients and discovers API keys from the environment.
//
// Key discovery checks a list of conventional environment variable names per
// provider (several aliases each) before falling back to the generic
// <PROVIDER>_API_KEY form. Multiple keys may be supplied as a comma-separated
// list; KeyRing hands out a random key per pick so repeated executions spread
// load across keys.
package provider

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/hermes-ai/hermes/model"
	"github.com/hermes-ai/hermes/model/anthropic"
	"github.com/hermes-ai/hermes/model/gemini"
	"github.com/hermes-ai/hermes/model/openai"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
)

// keyEnvVars lists candidate environment variable names per provider,
// checked in order.
var keyEnvVars = map[string][]string{
	"openai": {
		"OPENAI_API_KEY",
		"OPENAI_KEY",
		"OPEN_AI_KEY",
		"OPENAI_TOKEN",
	},
	"azure": {
		"AZURE_OPENAI_API_KEY",
		"AZURE_OPENAI_KEY",
		"AZURE_API_KEY",
		"AZURE_KEY",
	},
	"anthropic": {
		"ANTHROPIC_API_KEY",
		"ANTHROPIC_KEY",
		"CLAUDE_API_KEY",
		"CLAUDE_KEY",
	},
	"google": {
		"GOOGLE_API_KEY",
		"GOOGLE_KEY",
		"GEMINI_API_KEY",
		"GEMINI_KEY",
		"GOOGLE_AI_KEY",
	},
	"gemini": {
		"GEMINI_API_KEY",
		"GEMINI_KEY",
		"GOOGLE_API_KEY",
		"GOOGLE_KEY",
	},
	"cohere": {
		"COHERE_API_KEY",
		"COHERE_KEY",
		"CO_API_KEY",
	},
	"huggingface": {
		"HUGGINGFACE_API_KEY",
		"HUGGINGFACE_TOKEN",
		"HF_API_KEY",
		"HF_TOKEN",
		"HUGGING_FACE_KEY",
	},
	"replicate": {
		"REPLICATE_API_KEY",
		"REPLICATE_TOKEN",
		"REPLICATE_KEY",
	},
	"together": {
		"TOGETHER_API_KEY",
		"TOGETHER_KEY",
		"TOGETHERAI_KEY",
	},
	"mistral": {
		"MISTRAL_API_KEY",
		"MISTRAL_KEY",
		"MISTRALAI_KEY",
	},
	"groq": {
		"GROQ_API_KEY",
		"GROQ_KEY",
	},
	"perplexity": {
		"PERPLEXITY_API_KEY",
		"PERPLEXITY_KEY",
		"PPLX_API_KEY",
	},
	"deepseek": {
		"DEEPSEEK_API_KEY",
		"DEEPSEEK_KEY",
	},
}

// azureEndpointEnv names the environment variable holding the Azure OpenAI
// resource endpoint.
const azureEndpointEnv = "AZURE_OPENAI_ENDPOINT"

// ResolveAPIKey retrieves the API key for a provider from the environment.
// Returns an empty string if no candidate variable is set.
func ResolveAPIKey(provider string) string {
	name := strings.ToLower(strings.TrimSpace(provider))

	for _, envVar := range keyEnvVars[name] {
		if key := os.Getenv(envVar); key != "" {
			return key
		}
	}

	// Fallback: the standard <PROVIDER>_API_KEY form.
	return os.Getenv(strings.ToUpper(name) + "_API_KEY")
}

// ParseAPIKeys splits a comma-separated key list, trimming whitespace and
// dropping empty entries.
func ParseAPIKeys(csv string) []string {
	var keys []string
	for _, k := range strings.Split(csv, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// KeyRing hands out API keys. With a single key Pick is deterministic; with
// multiple keys it selects one at random per call.
type KeyRing struct {
	keys []string
}

// NewKeyRing builds a KeyRing from explicit keys, falling back to environment
// discovery for the provider when none are supplied.
func NewKeyRing(provider, csv string) *KeyRing {
	keys := ParseAPIKeys(csv)
	if len(keys) == 0 {
		if key := ResolveAPIKey(provider); key != "" {
			keys = []string{key}
		}
	}
	return &KeyRing{keys: keys}
}

// Pick returns one key, chosen at random when several are configured.
// Empty ring returns "" (provider SDKs then use their own env defaults).
func (r *KeyRing) Pick() string {
	switch len(r.keys) {
	case 0:
		return ""
	case 1:
		return r.keys[0]
	default:
		return r.keys[rand.Intn(len(r.keys))]
	}
}

// Len returns the number of keys in the ring.
func (r *KeyRing) Len() int { return len(r.keys) }

// Masked returns a redacted representation of a key safe for logging.
func Masked(key string) string {
	if len(key) > 12 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	return "***"
}

// New constructs a model client for the given provider name.
// Supported providers: openai, azure, anthropic, google, gemini.
func New(provider, modelName, apiKey string, temperature float64) (model.Model, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			o.Model = modelName
			o.Temperature = temperature
			o.APIKey = apiKey
		}), nil
	case "azure":
		endpoint := os.Getenv(azureEndpointEnv)
		if endpoint == "" {
			return nil, fmt.Errorf("azure provider requires %s to be set", azureEndpointEnv)
		}
		return openai.NewAzureModel(func(o *openai.AzureOptions) {
			o.Model = modelName
			o.Temperature = temperature
			o.APIKey = apiKey
			o.Endpoint = endpoint
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.Model = anthropicsdk.Model(modelName)
			o.Temperature = temperature
			o.APIKey = apiKey
		}), nil
	case "google", "gemini":
		return gemini.NewModel(func(o *gemini.Options) {
			o.Model = modelName
			o.Temperature = temperature
			o.APIKey = apiKey
		})
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
