package corpus

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensura/unitex/unitex"
)

func strp(s string) *string { return &s }

// TestSuites runs every suite under testdata through the engine.
func TestSuites(t *testing.T) {
	entries, err := os.ReadDir("testdata")
	require.NoError(t, err)

	table := unitex.DefaultTable()
	mapping := SIDimensions()

	ran := 0
	for _, entry := range entries {
		switch filepath.Ext(entry.Name()) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		suite, err := Load(filepath.Join("testdata", entry.Name()))
		require.NoError(t, err, "load %s", entry.Name())

		for i := range suite.Records {
			rec := &suite.Records[i]
			ran++
			t.Run(suite.Name+"/"+rec.Name, func(t *testing.T) {
				assert.NoError(t, Verify(table, rec, mapping))
			})
		}
	}
	require.NotZero(t, ran, "no suites found under testdata")
}

func TestParseJSON(t *testing.T) {
	data := []byte(`{
		"name": "mini",
		"records": [
			{"name": "metre", "input": "m", "ast": "m"},
			{"name": "bad", "input": "m/", "error": "expected a denominator"}
		]
	}`)
	s, err := ParseJSON(data)
	require.NoError(t, err)
	assert.Equal(t, "mini", s.Name)
	require.Len(t, s.Records, 2)
	assert.Equal(t, "m", *s.Records[0].Input)
	assert.Equal(t, "expected a denominator", s.Records[1].WantError)

	_, err = ParseJSON([]byte(`{`))
	assert.Error(t, err)
}

func TestParseYAML(t *testing.T) {
	data := []byte("name: mini\nrecords:\n  - name: metre\n    input: m\n    output: m\n")
	s, err := ParseYAML(data)
	require.NoError(t, err)
	require.Len(t, s.Records, 1)
	assert.Equal(t, "m", *s.Records[0].Output)

	_, err = ParseYAML([]byte("records: [1,"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	_, err := ParseJSON([]byte(`{"records": [{"name": "hollow"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"hollow"`)

	_, err = ParseJSON([]byte(`{"records": [{}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "#0")
}

func TestLoad_UnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.txt")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown extension")
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	s := &Suite{
		Name: "export",
		Records: []Record{
			{Name: "gravity", Input: strp("9.81 m/s^2"), AST: strp("(/ (* 9.81 m) (^ s 2))")},
			{Name: "bad", Input: strp("W/m/K"), WantError: "second division"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, s.WriteJSON(&buf))

	back, err := ParseJSON(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, s, back)
}

func TestVerify(t *testing.T) {
	table := unitex.DefaultTable()
	mapping := SIDimensions()

	tests := []struct {
		name    string
		rec     Record
		wantErr string
	}{
		{"pass", Record{Input: strp("kg m"), AST: strp("(* kg m)"), Output: strp("kg m"), Dimensions: strp("ML")}, ""},
		{"output only", Record{Output: strp("kg m")}, ""},
		{"output not canonical", Record{Output: strp("kg  m")}, "rendering mismatch"},
		{"wrong tree", Record{Input: strp("m"), AST: strp("(pfx k m)")}, "tree mismatch"},
		{"wrong rendering", Record{Input: strp("m K"), Output: strp("mK")}, "rendering mismatch"},
		{"wrong dimensions", Record{Input: strp("m"), Dimensions: strp("T")}, "dimension mismatch"},
		{"undimensioned mark", Record{Input: strp("{note} m"), Dimensions: strp("L")}, "has no dimension"},
		{"wanted error missing", Record{Input: strp("m"), WantError: "boom"}, "expected an error"},
		{"wanted error differs", Record{Input: strp("m/0"), WantError: "overflow"}, "expected an error"},
		{"parse failure", Record{Input: strp("(")}, "expected a factor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(table, &tt.rec, mapping)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// A nil mapping runs the record but skips its dimension assertion.
func TestVerify_NilMapping(t *testing.T) {
	rec := Record{Input: strp("m"), Dimensions: strp("T")}
	assert.NoError(t, Verify(unitex.DefaultTable(), &rec, nil))
}
