package mailservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplate_ParsesEveryFileOnce(t *testing.T) {
	tp, err := NewTemplate()
	require.NoError(t, err)

	assert.Len(t, tp.set, 2)
	assert.Contains(t, tp.set, templateActivation)
	assert.Contains(t, tp.set, templateNewBlog)
}

func TestTemplate_Render(t *testing.T) {
	tp, err := NewTemplate()
	require.NoError(t, err)

	testCases := []struct {
		name         string
		templateName string
		data         any
		contains     string
		expectedErr  bool
	}{
		{
			name:         "activation",
			templateName: templateActivation,
			data: struct {
				Name            string
				ActivationToken string
			}{
				Name:            "Alice",
				ActivationToken: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
			},
			contains: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		},
		{
			name:         "new blog",
			templateName: templateNewBlog,
			data: struct {
				Title  string
				Slug   string
				Author string
			}{
				Title:  "Hello World",
				Slug:   "hello-world",
				Author: "Alice",
			},
			contains: "Hello World",
		},
		{
			name:         "invalid template name",
			templateName: "invalid_template.html",
			data:         nil,
			expectedErr:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, p, h, err := tp.Render(tc.templateName, tc.data)
			assert.Equal(t, tc.expectedErr, err != nil)

			if err == nil {
				assert.NotEmpty(t, s.String())
				assert.Contains(t, p.String(), tc.contains)
				assert.Contains(t, h.String(), tc.contains)
			}
		})
	}
}

func TestTemplate_RenderIsRepeatable(t *testing.T) {
	tp, err := NewTemplate()
	require.NoError(t, err)

	data := struct{ Title, Slug, Author string }{Title: "First", Slug: "first", Author: "Alice"}
	first, _, _, err := tp.Render(templateNewBlog, data)
	require.NoError(t, err)

	data.Title = "Second"
	second, _, html, err := tp.Render(templateNewBlog, data)
	require.NoError(t, err)

	assert.NotEqual(t, first.String(), second.String())
	assert.Contains(t, html.String(), "Second")
	assert.NotContains(t, html.String(), "First")
}
