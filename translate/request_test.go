package translate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/llmtranslator/schema"
)

func registry(t *testing.T) *schema.Registry {
	t.Helper()
	ct, err := schema.Parse([]byte(articleSchema))
	require.NoError(t, err)
	seo, err := schema.Parse([]byte(`{"uid": "shared.seo", "attributes": {"metaTitle": {"type": "string"}}}`))
	require.NoError(t, err)
	return schema.NewRegistry(ct, seo)
}

func decodeRequest(t *testing.T, body string) Request {
	t.Helper()
	var req Request
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestRequestResolveInlineSchema(t *testing.T) {
	req := decodeRequest(t, `{
		"contentType": {"uid": "api::page.page", "attributes": {"title": {"type": "string"}}},
		"fields": {"title": "Hi"},
		"components": {"shared.cta": {"attributes": {"label": {"type": "string"}}}},
		"targetLanguage": "it"
	}`)

	ct, comps, err := req.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, "api::page.page", ct.UID)
	assert.NotNil(t, comps.Lookup("shared.cta"))
	assert.Equal(t, "Hi", req.Fields["title"])
	assert.Equal(t, Config{TargetLanguage: "it"}, req.Config())
}

func TestRequestResolveByUID(t *testing.T) {
	req := decodeRequest(t, `{"contentType": "api::article.article", "fields": {}, "targetLanguage": "fr"}`)

	ct, comps, err := req.Resolve(registry(t))
	require.NoError(t, err)
	assert.Equal(t, "api::article.article", ct.UID)
	assert.NotNil(t, comps.Lookup("shared.seo"), "registry components are available")
}

func TestRequestComponentsOverrideRegistry(t *testing.T) {
	req := decodeRequest(t, `{
		"contentType": "api::article.article",
		"components": {"shared.seo": {"attributes": {"metaDescription": {"type": "text"}}}}
	}`)

	_, comps, err := req.Resolve(registry(t))
	require.NoError(t, err)
	_, ok := comps.Lookup("shared.seo").Attributes.Get("metaDescription")
	assert.True(t, ok)
}

func TestRequestResolveErrors(t *testing.T) {
	tests := map[string]struct {
		body string
		reg  *schema.Registry
	}{
		"missing content type": {body: `{"fields": {}}`},
		"null content type":    {body: `{"contentType": null}`},
		"uid without registry": {body: `{"contentType": "api::article.article"}`},
		"unknown uid":          {body: `{"contentType": "api::missing.missing"}`, reg: schema.NewRegistry()},
		"malformed schema":     {body: `{"contentType": {"attributes": []}}`},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := decodeRequest(t, tc.body)
			_, _, err := req.Resolve(tc.reg)
			assert.Error(t, err)
		})
	}

	_, _, err := decodeRequest(t, `{}`).Resolve(nil)
	assert.ErrorIs(t, err, ErrNoContentType)
}
