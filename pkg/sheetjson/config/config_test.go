package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson"
)

const sample = `
source:
  token: ${TEST_SOURCE_TOKEN}
  timeout: 15s
publish:
  kind: s3
  bucket: exports
  prefix: site
export:
  naming: camel
  ignore_pattern: "^_"
  ignore_sheets: ["Draft"]
documents:
  - id: AbC123
    output: data/roster.json
  - id: XyZ789
    output: data/schedule.json
`

func TestParse(t *testing.T) {
	t.Setenv("TEST_SOURCE_TOKEN", "from-env")

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Source.Token)
	assert.Equal(t, 15*time.Second, cfg.Source.Timeout)
	assert.Equal(t, float64(defaultRateLimit), cfg.Source.RateLimit)
	assert.Equal(t, defaultConcurrency, cfg.Concurrency)
	assert.Equal(t, "exports", cfg.Publish.Bucket)
	require.Len(t, cfg.Documents, 2)
	assert.Equal(t, Document{ID: "XyZ789", Output: "data/schedule.json"}, cfg.Documents[1])

	opts, err := cfg.Export.Options(nil)
	require.NoError(t, err)
	assert.Equal(t, sheetjson.FormatObjectBySheetName, opts.Format)
	assert.Equal(t, sheetjson.NamingCamel, opts.Naming)
	assert.Equal(t, []string{"Draft", "^_"}, opts.IgnoreSheetPatterns)
	assert.Equal(t, []string{"^_"}, opts.IgnoreColumnPatterns)
}

func TestParseKeepsPatternsLiteral(t *testing.T) {
	t.Setenv("Draft", "expanded")
	t.Setenv("TEST_OUTPUT_DIR", "site")

	cfg, err := Parse([]byte(`
publish: {bucket: exports}
export:
  ignore_sheets: ['^\$Draft']
  ignore_columns: ['_$']
  ignore_pattern: '^\$'
documents:
  - id: a
    output: ${TEST_OUTPUT_DIR}/a.json
`))
	require.NoError(t, err)
	assert.Equal(t, []string{`^\$Draft`}, cfg.Export.IgnoreSheets)
	assert.Equal(t, []string{`_$`}, cfg.Export.IgnoreColumns)
	assert.Equal(t, `^\$`, cfg.Export.IgnorePattern)
	assert.Equal(t, "site/a.json", cfg.Documents[0].Output)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TEST_SOURCE_TOKEN", "")
	t.Setenv(EnvSourceToken, "override")
	t.Setenv(EnvSourceBaseURL, "https://platform.example.com")
	t.Setenv(EnvPublishBucket, "other-bucket")

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "override", cfg.Source.Token)
	assert.Equal(t, "https://platform.example.com", cfg.Source.BaseURL)
	assert.Equal(t, "other-bucket", cfg.Publish.Bucket)
}

func TestFilePublisherDefault(t *testing.T) {
	t.Setenv(EnvPublishDir, "")
	cfg, err := Parse([]byte(`
publish:
  dir: ./out
documents:
  - id: a
    output: a.json
`))
	require.NoError(t, err)
	assert.Equal(t, PublisherFile, cfg.Publish.Kind)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no documents", "publish: {bucket: b}\n"},
		{"missing id", "publish: {bucket: b}\ndocuments: [{output: a.json}]\n"},
		{"missing output", "publish: {bucket: b}\ndocuments: [{id: a}]\n"},
		{"duplicate output", "publish: {bucket: b}\ndocuments: [{id: a, output: x.json}, {id: b, output: x.json}]\n"},
		{"missing bucket", "documents: [{id: a, output: a.json}]\n"},
		{"unknown publisher", "publish: {kind: ftp}\ndocuments: [{id: a, output: a.json}]\n"},
		{"bad format", "publish: {bucket: b}\nexport: {format: csv}\ndocuments: [{id: a, output: a.json}]\n"},
		{"bad naming", "publish: {bucket: b}\nexport: {naming: pascal}\ndocuments: [{id: a, output: a.json}]\n"},
		{"bad pattern", "publish: {bucket: b}\nexport: {ignore_pattern: '('}\ndocuments: [{id: a, output: a.json}]\n"},
		{"unknown field", "publish: {bucket: b}\ndocs: []\ndocuments: [{id: a, output: a.json}]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvPublishBucket, "")
			t.Setenv(EnvPublishDir, "")
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("SHEETJSON_TEST_BUCKET=from-dotenv\n"), 0644))
	t.Cleanup(func() { _ = os.Unsetenv("SHEETJSON_TEST_BUCKET") })

	require.NoError(t, LoadEnvFiles(filepath.Join(dir, "missing.env"), envPath))

	cfgPath := filepath.Join(dir, "sync.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("publish: {bucket: \"${SHEETJSON_TEST_BUCKET}\"}\ndocuments: [{id: a, output: a.json}]\n"), 0644))

	t.Setenv(EnvPublishBucket, "")
	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Publish.Bucket)
}
