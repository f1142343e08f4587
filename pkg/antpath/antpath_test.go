package antpath_test

import (
	"testing"

	"github.com/aussiebroadwan/blogadmin/pkg/antpath"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		// Literal paths
		{"/", "/", true},
		{"/", "/index.html", false},
		{"/login", "/login", true},
		{"/login", "/login/", false},
		{"/login", "/Login", false},
		{"/login", "/logout", false},

		// Single segment wildcards
		{"/*.html", "/index.html", true},
		{"/*.html", "/admin/index.html", false},
		{"/*.html", "/index.htm", false},
		{"/favicon.ico", "/favicon.ico", true},
		{"/user/?", "/user/a", true},
		{"/user/?", "/user/ab", false},
		{"/user/{id}", "/user/01HZX", true},
		{"/user/{id}", "/user/", false},

		// Multi segment wildcards
		{"/**/*.html", "/index.html", true},
		{"/**/*.html", "/admin/pages/edit.html", true},
		{"/**/*.css", "/static/css/app.css", true},
		{"/**/*.js", "/static/js/app.js", true},
		{"/**/*.js", "/static/js/app.json", false},
		{"/swagger-resources/**", "/swagger-resources", true},
		{"/swagger-resources/**", "/swagger-resources/", true},
		{"/swagger-resources/**", "/swagger-resources/configuration/ui", true},
		{"/swagger-resources/**", "/swagger", false},
		{"/v2/api-docs/**", "/v2/api-docs", true},
		{"/v2/**/docs", "/v2/a/b/docs", true},
		{"/v2/**/docs", "/v2/docs", true},
		{"/v2/**/docs", "/v2/a/b/other", false},
		{"/**", "/", true},
		{"/**", "/anything/at/all", true},

		// Whitespace is part of a segment
		{"/login", "/ /login", false},
		{"/login", "/login/ ", false},
		{"/login", "/login ", false},
		{"/*.html", "/ /index.html", false},
		{"/**", "/login/ ", true},

		// Relative patterns never match absolute paths
		{"login", "/login", false},
		{"", "/", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			require.Equal(t, tt.want, antpath.Match(tt.pattern, tt.path))
		})
	}
}

func TestCompileReuse(t *testing.T) {
	p := antpath.Compile("/**/*.css")
	require.Equal(t, "/**/*.css", p.String())
	require.True(t, p.Match("/a.css"))
	require.True(t, p.Match("/a/b/c.css"))
	require.False(t, p.Match("/a/b/c.scss"))
}
