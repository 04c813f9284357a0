package api

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormValues(t *testing.T) {
	form := url.Values{
		"ingredients": {" kale ", "", "potatoes"},
	}
	req := httptest.NewRequest("POST", "/recipes/create_recipe/post", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.NoError(t, req.ParseForm())

	t.Run("trims and drops blank entries", func(t *testing.T) {
		assert.Equal(t, []string{"kale", "potatoes"}, FormValues(req, "ingredients"))
	})

	t.Run("absent field is an empty slice, not nil", func(t *testing.T) {
		got := FormValues(req, "tools")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestFormValue(t *testing.T) {
	form := url.Values{"search": {"  kale  "}}
	req := httptest.NewRequest("POST", "/recipes/search", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.NoError(t, req.ParseForm())

	assert.Equal(t, "kale", FormValue(req, "search"))
	assert.Equal(t, "", FormValue(req, "missing"))
}
