package suite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadFile(t *testing.T) {
	s, err := LoadFile("testdata/reqres.yaml")
	require.NoError(t, err)

	assert.Equal(t, "reqres", s.Name)
	assert.Equal(t, "testdata", s.Dir())
	assert.Equal(t, 2, s.Variables["userId"])
	require.Len(t, s.Cases, 5)

	login := s.Cases[0]
	assert.Equal(t, "POST", login.Method)
	assert.Equal(t, "reqres", login.SpecName(s))
	assert.Equal(t, "ok-json", login.Expect.ResponseSpec)
	assert.Equal(t, map[string]any{"email": "eve.holt@reqres.in", "password": "cityslicka"}, login.Body)
	require.Len(t, login.Expect.Body, 1)
	assert.Equal(t, "token", login.Expect.Body[0].Path)
	assert.Equal(t, MatcherSpec{"notNull": true}, login.Expect.Body[0].Matcher)
	assert.Equal(t, map[string]string{"token": "token"}, login.Extract)

	user := s.Cases[1]
	assert.Equal(t, MatcherSpec{"contains": "application/json"}, user.Expect.Headers["Content-Type"])

	list := s.Cases[2]
	assert.Equal(t, "2", list.Query["page"])
	assert.Equal(t, []any{"George", "Rachel"}, list.Expect.Body[2].Matcher["equalTo"])

	assert.True(t, s.Cases[4].Skip)
	assert.NoError(t, s.Validate())
}

func TestLoadFile_NameFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "health-check.yml")
	require.NoError(t, os.WriteFile(path, []byte("cases:\n  - method: GET\n    path: http://localhost/health\n"), 0644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "health-check", s.Name)
	assert.NoError(t, s.Validate())
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("cases: [\n"))
	assert.ErrorIs(t, err, ErrParse)

	_, err = Parse([]byte("name: x\nbogus: 1\n"))
	assert.ErrorIs(t, err, ErrParse)

	_, err = Parse([]byte("cases:\n  - method: GET\n    path: /x\n    expect:\n      body:\n        - equalTo: 1\n"))
	assert.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "needs a string path")
}

func TestMatcherSpec_ScalarShorthand(t *testing.T) {
	var e Expect
	require.NoError(t, yaml.Unmarshal([]byte("headers:\n  X-Total: \"12\"\n"), &e))
	assert.Equal(t, MatcherSpec{"equalTo": "12"}, e.Headers["X-Total"])
}

func TestBodyExpectation_RoundTrip(t *testing.T) {
	in := BodyExpectation{Path: "data.id", Matcher: MatcherSpec{"equalTo": 2}}
	out, err := yaml.Marshal(in)
	require.NoError(t, err)

	var back BodyExpectation
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, in, back)
	assert.Equal(t, "data.id equalTo 2", in.Describe())
}

func TestBodyExpectation_Exists(t *testing.T) {
	var e Expect
	require.NoError(t, yaml.Unmarshal([]byte("body:\n  - path: token\n    exists: false\n"), &e))
	require.Len(t, e.Body, 1)
	require.NotNil(t, e.Body[0].Exists)
	assert.False(t, *e.Body[0].Exists)
	assert.Empty(t, e.Body[0].Matcher)
	assert.Equal(t, "token exists false", e.Body[0].Describe())

	out, err := yaml.Marshal(e.Body[0])
	require.NoError(t, err)
	var back BodyExpectation
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, e.Body[0], back)

	err = yaml.Unmarshal([]byte("body:\n  - path: token\n    exists: maybe\n"), &e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exists must be true or false")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		known []string
		msgs  []string
	}{
		{
			name: "no cases",
			yaml: "name: empty\n",
			msgs: []string{`suite "empty" has no cases`},
		},
		{
			name: "missing method and path",
			yaml: "spec: api\ncases:\n  - name: broken\n",
			known: []string{"api"},
			msgs: []string{`case "broken": missing method`, `case "broken": missing path`},
		},
		{
			name: "unknown specs",
			yaml: "cases:\n  - name: a\n    spec: nope\n    method: GET\n    path: /x\n    expect:\n      responseSpec: gone\n",
			msgs: []string{`unknown spec "nope"`, `unknown response spec "gone"`},
		},
		{
			name: "spec from config",
			yaml: "cases:\n  - name: a\n    spec: reqres\n    method: GET\n    path: /x\n",
			known: []string{"reqres"},
		},
		{
			name: "relative path without spec",
			yaml: "cases:\n  - method: GET\n    path: /users\n",
			msgs: []string{"case 1: no spec and path is not an absolute URL"},
		},
		{
			name: "bad method",
			yaml: "cases:\n  - method: FETCH\n    path: http://x\n",
			msgs: []string{`unsupported method "FETCH"`},
		},
		{
			name: "bad matchers and paths",
			yaml: "cases:\n  - name: m\n    method: GET\n    path: http://x\n    expect:\n      body:\n        - path: data[\n          equalTo: 1\n        - path: data\n          size: 1\n          equalTo: 1\n    extract:\n      id: 'a..b'\n",
			msgs: []string{"body expectation 1", "body data: matcher needs exactly one", "extract id"},
		},
		{
			name: "exists",
			yaml: "cases:\n  - method: GET\n    path: http://x\n    expect:\n      body:\n        - path: token\n          exists: false\n        - path: id\n          exists: true\n        - path: id\n          exists: true\n          equalTo: 4\n",
		},
		{
			name: "absent path with matcher",
			yaml: "cases:\n  - method: GET\n    path: http://x\n    expect:\n      body:\n        - path: token\n          exists: false\n          equalTo: 1\n",
			msgs: []string{"body token: exists: false takes no matcher"},
		},
		{
			name: "duplicate names",
			yaml: "cases:\n  - name: a\n    method: GET\n    path: http://x\n  - name: a\n    method: GET\n    path: http://x\n",
			msgs: []string{`case "a": duplicate name`},
		},
		{
			name: "bad content type",
			yaml: "cases:\n  - method: POST\n    path: http://x\n    contentType: jsonish\n",
			msgs: []string{`bad content type "jsonish"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)

			err = s.Validate(tt.known...)
			if len(tt.msgs) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, msg := range tt.msgs {
				assert.Contains(t, err.Error(), msg)
			}
		})
	}
}

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	for _, name := range []string{"a.yaml", "nested/b.yml", "notes.txt", ".reqspec.yaml", "routes.yaml", "nested/users.routes.yml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("cases: []\n"), 0644))
	}

	files, err := FindFiles([]string{dir})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "nested", "b.yml")}, files)

	files, err = FindFiles([]string{filepath.Join(dir, "routes.yaml")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "routes.yaml")}, files)

	_, err = FindFiles([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}
