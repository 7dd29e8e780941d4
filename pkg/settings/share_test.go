package settings_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/germanamz/promptly/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() settings.Settings {
	return settings.Settings{
		APIBaseURL:   "https://api.example.com/v1",
		Model:        "gpt-4o-mini",
		TokenizerURL: "",
		Prompt:       "<|system|>\nÜnïcode ✓ and ??>> to force + and /\n<|im_end|>\n",
		Params: settings.Params{
			MaxTokens:   "128",
			Temperature: "0.2",
			TopP:        "not a number",
		},
	}
}

func TestShare_RoundTrip(t *testing.T) {
	in := sample()

	enc := settings.EncodeShare(in)
	assert.NotContains(t, enc, "+")
	assert.NotContains(t, enc, "/")
	assert.NotContains(t, enc, "=")

	p, err := settings.DecodeShare(enc)
	require.NoError(t, err)
	assert.Equal(t, in, p.Apply(settings.Settings{}))
}

func TestShare_RoundTripEmpty(t *testing.T) {
	p, err := settings.DecodeShare(settings.EncodeShare(settings.Settings{}))
	require.NoError(t, err)
	assert.Equal(t, settings.Settings{}, p.Apply(sample()))
}

func TestDecodeShare_AcceptsPaddedStandardAlphabet(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte(`{"model":"m1"}`))
	require.True(t, strings.HasSuffix(raw, "="))

	p, err := settings.DecodeShare(raw)
	require.NoError(t, err)
	require.NotNil(t, p.Model)
	assert.Equal(t, "m1", *p.Model)
}

func TestDecodeShare_Invalid(t *testing.T) {
	for _, v := range []string{"%%%", "a", base64.RawURLEncoding.EncodeToString([]byte("not json"))} {
		_, err := settings.DecodeShare(v)
		assert.ErrorContains(t, err, "settings: decode share", "value %q", v)
	}
}

func TestPartial_ApplyShallowMerge(t *testing.T) {
	base := sample()
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"model":"other","params":{"topK":"5"}}`))

	p, err := settings.DecodeShare(payload)
	require.NoError(t, err)

	got := p.Apply(base)
	assert.Equal(t, "other", got.Model)
	assert.Equal(t, base.APIBaseURL, got.APIBaseURL)
	assert.Equal(t, base.Prompt, got.Prompt)
	assert.Equal(t, settings.Params{TopK: "5"}, got.Params)
}
