package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNameRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"plain", "docs"},
		{"with underscore", "my_docs"},
		{"with digits", "db01"},
		{"underscore and digits", "db_01234567"},
		{"looks like timestamp", "x_20240101_120000"},
	}

	createdAt := time.Date(2024, 3, 17, 9, 45, 3, 0, time.UTC)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			filename, err := BuildName(tc.source, createdAt)
			require.NoError(t, err)

			record, ok := ParseName(filename)
			require.True(t, ok, "built name must parse: %s", filename)
			assert.Equal(t, tc.source, record.SourceName)
			assert.Equal(t, createdAt.Format("20060102_150405"), record.CreatedAt.Format("20060102_150405"))
			assert.Equal(t, 0, record.Seq)
		})
	}
}

func TestRecordNameWithSeq(t *testing.T) {
	createdAt := time.Date(2024, 3, 17, 9, 45, 3, 0, time.UTC)
	record := Record{SourceName: "db", CreatedAt: createdAt, Seq: 2}

	assert.Equal(t, "db_20240317_094503_2.tar.gz", record.Name())

	parsed, ok := ParseName(record.Name())
	require.True(t, ok)
	assert.Equal(t, "db", parsed.SourceName)
	assert.Equal(t, 2, parsed.Seq)
}

func TestParseNameRejectsUnrelatedFiles(t *testing.T) {
	for _, filename := range []string{
		"notes.txt",
		"readme.md",
		"docs.tar.gz",
		"docs_20240317.tar.gz",
		"docs_20240317_0945.tar.gz",
		"_20240317_094503.tar.gz",
		"docs_99999999_999999.tar.gz",
		"docs_20240317_094503.zip",
	} {
		_, ok := ParseName(filename)
		assert.False(t, ok, "must not parse: %s", filename)
	}
}

func TestSanitizeSourceName(t *testing.T) {
	sanitized, err := SanitizeSourceName("/home/user/docs")
	require.NoError(t, err)
	assert.Equal(t, "home_user_docs", sanitized)

	_, err = SanitizeSourceName("///")
	assert.ErrorIs(t, err, ErrInvalidSourceName)

	_, err = SanitizeSourceName("")
	assert.ErrorIs(t, err, ErrInvalidSourceName)
}

func TestBuildNameSanitizes(t *testing.T) {
	createdAt := time.Date(2024, 3, 17, 9, 45, 3, 0, time.UTC)

	filename, err := BuildName("var/www", createdAt)
	require.NoError(t, err)
	assert.Equal(t, "var_www_20240317_094503.tar.gz", filename)
}
