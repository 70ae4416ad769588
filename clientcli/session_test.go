package clientcli_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sagarc03/s3manager"
	"github.com/sagarc03/s3manager/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBucket struct {
	mock.Mock
}

func (m *MockBucket) List(ctx context.Context, prefix, delimiter string) (s3manager.ListOutput, error) {
	args := m.Called(ctx, prefix, delimiter)
	return args.Get(0).(s3manager.ListOutput), args.Error(1)
}

func (m *MockBucket) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	args := m.Called(ctx, key, contentType, body, size)
	return args.Error(0)
}

func (m *MockBucket) Get(ctx context.Context, key string) (s3manager.Object, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(s3manager.Object), args.Error(1)
}

func (m *MockBucket) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockBucket) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockBucket) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockBucket) Check(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// sessionFixture wires a Session to a fake server and a mock bucket.
type sessionFixture struct {
	session *clientcli.Session
	cache   *clientcli.LocalCache
	bucket  *MockBucket
	opened  []s3manager.UserConfig
	calls   map[string]int
}

// storeDown answers every request as if the configuration store were offline.
func storeDown(w http.ResponseWriter, _ *http.Request) {
	writeEnvelope(w, http.StatusServiceUnavailable, "store_unavailable", "Configuration store is unavailable")
}

func newSessionFixture(t *testing.T, handler http.HandlerFunc) *sessionFixture {
	t.Helper()

	f := &sessionFixture{
		bucket: &MockBucket{},
		calls:  map[string]int{},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls[r.Method+" "+r.URL.Path]++
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := clientcli.New(&clientcli.Config{Server: srv.URL, Token: testToken})
	require.NoError(t, err)

	f.cache = newCache(t)
	open := func(_ context.Context, cfg s3manager.UserConfig) (s3manager.Bucket, error) {
		f.opened = append(f.opened, cfg)
		return f.bucket, nil
	}
	f.session = clientcli.NewSession(client, f.cache, open)

	t.Cleanup(func() { f.bucket.AssertExpectations(t) })
	return f
}

func TestSession_SaveConfig(t *testing.T) {
	in := s3manager.ConfigInput{AccessKeyID: "AKIA", SecretKey: "secret", BucketName: "b", Region: "us-east-1"}

	t.Run("server accepts", func(t *testing.T) {
		f := newSessionFixture(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"message":"Configuration saved successfully"}`)
		})

		source, err := f.session.SaveConfig(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, clientcli.SourceServer, source)
		assert.False(t, f.cache.Has())
	})

	t.Run("store unavailable writes fallback", func(t *testing.T) {
		f := newSessionFixture(t, storeDown)

		source, err := f.session.SaveConfig(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, clientcli.SourceFallback, source)

		cached, err := f.cache.Get()
		require.NoError(t, err)
		require.NotNil(t, cached)
		assert.Equal(t, "secret", cached.SecretKey)
		assert.Equal(t, "b", cached.BucketName)
	})

	t.Run("fallback update with empty secret keeps cached secret", func(t *testing.T) {
		f := newSessionFixture(t, storeDown)
		ctx := context.Background()

		_, err := f.session.SaveConfig(ctx, in)
		require.NoError(t, err)

		update := in
		update.SecretKey = ""
		update.Region = "eu-west-1"
		source, err := f.session.SaveConfig(ctx, update)
		require.NoError(t, err)
		assert.Equal(t, clientcli.SourceFallback, source)

		cached, err := f.cache.Get()
		require.NoError(t, err)
		require.NotNil(t, cached)
		assert.Equal(t, "secret", cached.SecretKey)
		assert.Equal(t, "eu-west-1", cached.Region)

		safe, source, err := f.session.ShowConfig(ctx)
		require.NoError(t, err)
		assert.Equal(t, clientcli.SourceFallback, source)
		assert.True(t, safe.HasSecretKey)
	})

	t.Run("fallback first save without secret is rejected", func(t *testing.T) {
		f := newSessionFixture(t, storeDown)

		partial := in
		partial.SecretKey = ""
		_, err := f.session.SaveConfig(context.Background(), partial)
		assert.ErrorIs(t, err, s3manager.ErrInvalidInput)
		assert.False(t, f.cache.Has())
	})

	t.Run("fallback save with missing field keeps previous record", func(t *testing.T) {
		f := newSessionFixture(t, storeDown)
		ctx := context.Background()

		_, err := f.session.SaveConfig(ctx, in)
		require.NoError(t, err)

		partial := in
		partial.BucketName = " "
		_, err = f.session.SaveConfig(ctx, partial)
		assert.ErrorIs(t, err, s3manager.ErrInvalidInput)

		cached, err := f.cache.Get()
		require.NoError(t, err)
		require.NotNil(t, cached)
		assert.Equal(t, "b", cached.BucketName)
	})

	t.Run("validation error does not fall back", func(t *testing.T) {
		f := newSessionFixture(t, func(w http.ResponseWriter, _ *http.Request) {
			writeEnvelope(w, http.StatusBadRequest, "invalid_input", "bucketName is required")
		})

		_, err := f.session.SaveConfig(context.Background(), in)
		require.Error(t, err)
		assert.False(t, f.cache.Has())
	})

	t.Run("unauthenticated does not fall back", func(t *testing.T) {
		f := newSessionFixture(t, func(w http.ResponseWriter, _ *http.Request) {
			writeEnvelope(w, http.StatusUnauthorized, "unauthenticated", "Authentication required")
		})

		_, err := f.session.SaveConfig(context.Background(), in)
		assert.ErrorIs(t, err, clientcli.ErrUnauthorized)
		assert.False(t, f.cache.Has())
	})
}

func TestSession_ShowConfig(t *testing.T) {
	t.Run("from server", func(t *testing.T) {
		f := newSessionFixture(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"accessKeyId":"AKIA","bucketName":"server-bucket","region":"r","hasSecretKey":true}`)
		})

		cfg, source, err := f.session.ShowConfig(context.Background())
		require.NoError(t, err)
		assert.Equal(t, clientcli.SourceServer, source)
		assert.Equal(t, "server-bucket", cfg.BucketName)
	})

	t.Run("from fallback", func(t *testing.T) {
		f := newSessionFixture(t, storeDown)
		require.NoError(t, f.cache.Save(testCached()))

		cfg, source, err := f.session.ShowConfig(context.Background())
		require.NoError(t, err)
		assert.Equal(t, clientcli.SourceFallback, source)
		assert.Equal(t, "my-bucket", cfg.BucketName)
		assert.True(t, cfg.HasSecretKey)
	})

	t.Run("store unavailable and no fallback", func(t *testing.T) {
		f := newSessionFixture(t, storeDown)

		_, _, err := f.session.ShowConfig(context.Background())
		assert.ErrorIs(t, err, clientcli.ErrNoFallback)
		assert.ErrorIs(t, err, clientcli.ErrStoreUnavailable)
	})

	t.Run("config missing ignores fallback", func(t *testing.T) {
		f := newSessionFixture(t, func(w http.ResponseWriter, _ *http.Request) {
			writeEnvelope(w, http.StatusNotFound, "config_missing", "No bucket configuration saved")
		})
		require.NoError(t, f.cache.Save(testCached()))

		_, _, err := f.session.ShowConfig(context.Background())
		assert.ErrorIs(t, err, clientcli.ErrConfigMissing)
	})
}

func TestSession_DeleteConfig(t *testing.T) {
	t.Run("from server keeps fallback", func(t *testing.T) {
		f := newSessionFixture(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"message":"Configuration deleted successfully"}`)
		})
		require.NoError(t, f.cache.Save(testCached()))

		source, err := f.session.DeleteConfig(context.Background())
		require.NoError(t, err)
		assert.Equal(t, clientcli.SourceServer, source)
		assert.True(t, f.cache.Has())
	})

	t.Run("store unavailable clears fallback", func(t *testing.T) {
		f := newSessionFixture(t, storeDown)
		require.NoError(t, f.cache.Save(testCached()))

		source, err := f.session.DeleteConfig(context.Background())
		require.NoError(t, err)
		assert.Equal(t, clientcli.SourceFallback, source)
		assert.False(t, f.cache.Has())
	})
}

func TestSession_Push(t *testing.T) {
	t.Run("nothing to push", func(t *testing.T) {
		f := newSessionFixture(t, func(w http.ResponseWriter, _ *http.Request) {
			t.Error("server should not be called")
		})

		err := f.session.Push(context.Background())
		assert.ErrorIs(t, err, clientcli.ErrNoFallback)
	})

	t.Run("pushes and clears", func(t *testing.T) {
		var pushed map[string]string
		f := newSessionFixture(t, func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&pushed))
			_, _ = io.WriteString(w, `{"message":"Configuration saved successfully"}`)
		})
		require.NoError(t, f.cache.Save(testCached()))

		require.NoError(t, f.session.Push(context.Background()))
		assert.Equal(t, 1, f.calls["POST /api/user-config"])
		assert.Equal(t, "super-secret-key", pushed["secretKey"])
		assert.False(t, f.cache.Has())
	})

	t.Run("store still down keeps fallback", func(t *testing.T) {
		f := newSessionFixture(t, storeDown)
		require.NoError(t, f.cache.Save(testCached()))

		err := f.session.Push(context.Background())
		assert.ErrorIs(t, err, clientcli.ErrStoreUnavailable)
		assert.True(t, f.cache.Has())
	})
}

func TestSession_List(t *testing.T) {
	t.Run("served by server", func(t *testing.T) {
		f := newSessionFixture(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"items":[{"key":"a.txt","type":"file","name":"a.txt"}]}`)
		})

		items, err := f.session.List(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Empty(t, f.opened)
	})

	t.Run("falls back to bucket", func(t *testing.T) {
		f := newSessionFixture(t, storeDown)
		require.NoError(t, f.cache.Save(testCached()))

		f.bucket.On("List", mock.Anything, "docs/", s3manager.Delimiter).Return(s3manager.ListOutput{
			CommonPrefixes: []string{"docs/img/"},
			Objects:        []s3manager.ObjectEntry{{Key: "docs/a.txt", Size: 5}},
		}, nil).Once()

		items, err := f.session.List(context.Background(), "docs/")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "img", items[0].Name)
		assert.Equal(t, "a.txt", items[1].Name)

		require.Len(t, f.opened, 1)
		assert.Equal(t, "my-bucket", f.opened[0].BucketName)
		assert.Equal(t, "super-secret-key", f.opened[0].SecretKey)
	})

	t.Run("store unavailable and no fallback", func(t *testing.T) {
		f := newSessionFixture(t, storeDown)

		_, err := f.session.List(context.Background(), "")
		assert.ErrorIs(t, err, clientcli.ErrNoFallback)
		assert.ErrorIs(t, err, clientcli.ErrStoreUnavailable)
		assert.Empty(t, f.opened)
	})

	t.Run("config missing never falls back", func(t *testing.T) {
		f := newSessionFixture(t, func(w http.ResponseWriter, _ *http.Request) {
			writeEnvelope(w, http.StatusBadRequest, "config_missing", "No bucket configuration saved")
		})
		require.NoError(t, f.cache.Save(testCached()))

		_, err := f.session.List(context.Background(), "")
		assert.ErrorIs(t, err, clientcli.ErrConfigMissing)
		assert.Empty(t, f.opened)
	})
}

func TestSession_FallbackOperations(t *testing.T) {
	f := newSessionFixture(t, storeDown)
	require.NoError(t, f.cache.Save(testCached()))
	ctx := context.Background()

	t.Run("create folder", func(t *testing.T) {
		f.bucket.On("Put", mock.Anything, "docs/new-folder/", s3manager.FolderContentType, mock.Anything, int64(0)).
			Return(nil).Once()

		res, err := f.session.CreateFolder(ctx, "docs/", "new folder")
		require.NoError(t, err)
		assert.Equal(t, "docs/new-folder/", res.Key)
	})

	t.Run("delete object", func(t *testing.T) {
		f.bucket.On("Delete", mock.Anything, "docs/a.txt").Return(nil).Once()

		require.NoError(t, f.session.DeleteObject(ctx, "docs/a.txt"))
	})

	t.Run("get content", func(t *testing.T) {
		f.bucket.On("Get", mock.Anything, "notes.txt").Return(s3manager.Object{
			Body:        io.NopCloser(strings.NewReader("hello")),
			ContentType: "text/plain",
		}, nil).Once()

		content, err := f.session.GetContent(ctx, "notes.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", content.Content)
	})

	t.Run("presign upload", func(t *testing.T) {
		f.bucket.On("PresignPut", mock.Anything, "docs/a.txt", "text/plain", s3manager.DefaultUploadTTL).
			Return("https://bucket.example/put", nil).Once()

		signed, err := f.session.PresignUpload(ctx, s3manager.PresignRequest{Prefix: "docs/", FileName: "a.txt", ContentType: "text/plain"})
		require.NoError(t, err)
		assert.Equal(t, "https://bucket.example/put", signed.URL)
		assert.Equal(t, http.MethodPut, signed.Method)
	})

	t.Run("presign download", func(t *testing.T) {
		f.bucket.On("PresignGet", mock.Anything, "docs/a.txt", s3manager.DefaultDownloadTTL).
			Return("https://bucket.example/get", nil).Once()

		signed, err := f.session.PresignDownload(ctx, s3manager.PresignRequest{Key: "docs/a.txt"})
		require.NoError(t, err)
		assert.Equal(t, "https://bucket.example/get", signed.URL)
	})

	t.Run("upstream errors surface", func(t *testing.T) {
		f.bucket.On("Delete", mock.Anything, "locked.txt").Return(errors.New("access denied")).Once()

		err := f.session.DeleteObject(ctx, "locked.txt")
		assert.ErrorIs(t, err, s3manager.ErrUpstream)
	})
}
