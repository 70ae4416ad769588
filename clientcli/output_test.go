package clientcli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sagarc03/s3manager"
	"github.com/sagarc03/s3manager/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormatter(t *testing.T) {
	t.Run("json formatter", func(t *testing.T) {
		formatter := clientcli.NewFormatter(true, false)
		_, ok := formatter.(*clientcli.JSONFormatter)
		assert.True(t, ok)
	})

	t.Run("human formatter quiet", func(t *testing.T) {
		formatter := clientcli.NewFormatter(false, true)
		hf, ok := formatter.(*clientcli.HumanFormatter)
		require.True(t, ok)
		assert.True(t, hf.Quiet)
	})
}

func TestHumanFormatter_FormatUpload(t *testing.T) {
	results := []clientcli.UploadResult{
		{LocalPath: "local.txt", Key: "docs/local.txt", Size: 1024},
		{LocalPath: "broken.txt", Err: errors.New("permission denied")},
	}

	t.Run("verbose", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatUpload(&buf, results))

		output := buf.String()
		assert.Contains(t, output, "Uploaded: local.txt -> docs/local.txt (1.0 KB)")
		assert.Contains(t, output, "Error: broken.txt - permission denied")
	})

	t.Run("quiet keeps errors", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatUpload(&buf, results))

		output := buf.String()
		assert.NotContains(t, output, "Uploaded")
		assert.Contains(t, output, "Error: broken.txt")
	})
}

func TestHumanFormatter_FormatList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatList(&buf, nil))
		assert.Equal(t, "No objects found\n", buf.String())
	})

	t.Run("folders and files", func(t *testing.T) {
		size := int64(2048)
		modified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		items := []s3manager.StorageItem{
			{Key: "docs/img/", Type: s3manager.ItemFolder, Name: "img"},
			{Key: "docs/a.txt", Type: s3manager.ItemFile, Name: "a.txt", Size: &size, LastModified: &modified},
		}

		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatList(&buf, items))

		output := buf.String()
		assert.Contains(t, output, "NAME")
		assert.Contains(t, output, "img/")
		assert.Contains(t, output, "a.txt")
		assert.Contains(t, output, "2.0 KB")
		assert.Contains(t, output, "2024-03-01 12:00:00")
		assert.Contains(t, output, "1 folder(s), 1 file(s) (2.0 KB total)")
	})
}

func TestHumanFormatter_FormatConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := s3manager.SafeConfig{AccessKeyID: "AKIA", BucketName: "b", Region: "us-east-1", HasSecretKey: true}
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatConfig(&buf, cfg, clientcli.SourceFallback))

	output := buf.String()
	assert.Contains(t, output, "Source:     fallback")
	assert.Contains(t, output, "Bucket:     b")
	assert.Contains(t, output, "Secret Key: ********")
	assert.NotContains(t, output, "Updated")
}

func TestHumanFormatter_FormatURL(t *testing.T) {
	signed := s3manager.PresignedURL{
		URL:       "https://bucket.example/a.txt?sig=1",
		Key:       "a.txt",
		Method:    http.MethodPut,
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}

	t.Run("quiet prints bare url", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatURL(&buf, signed))
		assert.Equal(t, signed.URL+"\n", buf.String())
	})

	t.Run("verbose", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatURL(&buf, signed))
		assert.Contains(t, buf.String(), "PUT "+signed.URL)
		assert.Contains(t, buf.String(), "Key:     a.txt")
	})
}

func TestHumanFormatter_FormatDelete(t *testing.T) {
	results := []clientcli.DeleteResult{
		{Key: "a.txt", Deleted: true},
		{Key: "b.txt", Err: errors.New("denied")},
	}

	var buf bytes.Buffer
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatDelete(&buf, results))
	assert.Contains(t, buf.String(), "Deleted: a.txt")
	assert.Contains(t, buf.String(), "Error: b.txt - denied")
}

func TestHumanFormatter_FormatProfiles(t *testing.T) {
	profiles := []clientcli.Profile{
		{Name: "local", Server: "http://localhost:5780", Token: "abcdefghijklmnop"},
		{Name: "prod", Server: "https://s3m.example.com"},
	}

	t.Run("list masks tokens", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileList(&buf, profiles, "prod", false))

		output := buf.String()
		assert.Contains(t, output, "abcd...mnop")
		assert.NotContains(t, output, "abcdefghijklmnop")
		assert.Contains(t, output, "* prod")
		assert.Contains(t, output, "(not set)")
	})

	t.Run("show with secrets", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileShow(&buf, profiles[0], true, true))

		output := buf.String()
		assert.Contains(t, output, "Name:     local (default)")
		assert.Contains(t, output, "Token:    abcdefghijklmnop")
	})
}

func TestJSONFormatter_FormatList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&clientcli.JSONFormatter{}).FormatList(&buf, nil))

	var out map[string][]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.NotNil(t, out["items"])
	assert.Empty(t, out["items"])
}

func TestJSONFormatter_FormatConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := s3manager.SafeConfig{AccessKeyID: "AKIA", BucketName: "b", Region: "r", HasSecretKey: true}
	require.NoError(t, (&clientcli.JSONFormatter{}).FormatConfig(&buf, cfg, clientcli.SourceServer))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "server", out["source"])
	assert.Equal(t, "b", out["bucketName"])
	assert.Equal(t, true, out["hasSecretKey"])
	assert.NotContains(t, out, "secretKey")
}

func TestJSONFormatter_FormatUpload(t *testing.T) {
	results := []clientcli.UploadResult{
		{LocalPath: "a.txt", Key: "a.txt", ContentType: "text/plain", Size: 3},
		{LocalPath: "b.txt", Key: "b.txt", ContentType: "text/plain", Size: 9, Err: errors.New("denied")},
	}

	var buf bytes.Buffer
	require.NoError(t, (&clientcli.JSONFormatter{}).FormatUpload(&buf, results))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "text/plain", out[0]["content_type"])
	assert.Equal(t, "denied", out[1]["error"])
	assert.NotContains(t, out[1], "size_bytes")
}

func TestJSONFormatter_FormatError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&clientcli.JSONFormatter{}).FormatError(&buf, errors.New("boom")))
	assert.JSONEq(t, `{"error":"boom"}`, buf.String())
}
