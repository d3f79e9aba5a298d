package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "data": {
    "hierarchy": {"projects": {"p": {"displayName": "Project"}}},
    "identity": {"service_accounts": {"sa@p.iam.gserviceaccount.com": {"project": "p"}}}
  }
}`

func TestLoad_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0644))

	l := New(DefaultOptions())
	doc, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, doc.Data.Hierarchy.Projects, "p")
	assert.Contains(t, doc.Data.Identity.ServiceAccounts, "sa@p.iam.gserviceaccount.com")
}

func TestLoad_RemoteURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleDoc))
	}))
	defer srv.Close()

	l := New(DefaultOptions())
	doc, err := l.Load(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, doc.Data.Hierarchy.Projects, "p")
}

func TestLoad_RemoteURL_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	l := New(DefaultOptions())
	_, err := l.Load(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestLoad_Folder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hierarchy.json"),
		[]byte(`{"projects": {"p": {"displayName": "Project"}}}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "identity.json"),
		[]byte(`{"service_accounts": {"sa@p.iam.gserviceaccount.com": {"project": "p"}}}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"),
		[]byte(`{"fragments": {"hierarchy": "hierarchy.json", "identity": "identity.json"}}`), 0644))

	l := New(DefaultOptions())
	doc, err := l.Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Contains(t, doc.Data.Hierarchy.Projects, "p")
	assert.Contains(t, doc.Data.Identity.ServiceAccounts, "sa@p.iam.gserviceaccount.com")
}

func TestLoad_FolderWithRemoteFragment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service_accounts": {"sa@p.iam.gserviceaccount.com": {"project": "p"}}}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hierarchy.json"),
		[]byte(`{"projects": {"p": {}}}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"),
		[]byte(`{"fragments": {"hierarchy": "hierarchy.json", "identity": "`+srv.URL+`"}}`), 0644))

	l := New(DefaultOptions())
	doc, err := l.Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Contains(t, doc.Data.Hierarchy.Projects, "p")
	assert.Contains(t, doc.Data.Identity.ServiceAccounts, "sa@p.iam.gserviceaccount.com")
}

func TestLoad_EmptySource(t *testing.T) {
	l := New(DefaultOptions())
	_, err := l.Load(context.Background(), "")
	assert.Error(t, err)
}
