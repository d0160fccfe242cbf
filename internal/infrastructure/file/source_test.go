package file_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mohammadpnp/outreach-import/internal/infrastructure/file"
)

func TestLocalSourceOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "uploads"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "uploads", "contacts.csv"), []byte("Email\na@x.com\n"), 0o600))

	source := file.NewLocalSource(dir)

	rc, err := source.Open(context.Background(), "uploads/contacts.csv")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "Email\na@x.com\n", string(body))

	_, err = source.Open(context.Background(), "uploads/missing.csv")
	require.True(t, errors.Is(err, file.ErrSourceNotFound), "got %v", err)

	_, err = source.Open(context.Background(), "../../etc/passwd")
	require.True(t, errors.Is(err, file.ErrSourceOutside), "got %v", err)
}

func TestS3SourceOpen(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/imports/tenant-a/contacts.csv":
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte("Email\na@x.com\n"))
		default:
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
		}
	}))
	defer server.Close()

	source, err := file.NewS3Source(file.S3Config{
		Endpoint:  server.URL,
		Region:    "us-east-1",
		Bucket:    "imports",
		AccessKey: "test",
		SecretKey: "test",
		KeyPrefix: "/tenant-a/",
	})
	require.NoError(t, err)

	rc, err := source.Open(context.Background(), "contacts.csv")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "Email\na@x.com\n", string(body))

	_, err = source.Open(context.Background(), "missing.csv")
	require.True(t, errors.Is(err, file.ErrSourceNotFound), "got %v", err)
}
