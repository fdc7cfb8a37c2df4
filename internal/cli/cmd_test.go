package cli

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certportal/internal/portal"
	"github.com/certportal/internal/portal/clientconfig"
)

func TestCommandStructure(t *testing.T) {
	for _, name := range []string{"login", "verify", "generate", "place", "events", "job", "config"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, cmd)
			assert.NotEmpty(t, cmd.Use)
			assert.NotEmpty(t, cmd.Short)
		})
	}

	set, _, err := rootCmd.Find([]string{"config", "set"})
	require.NoError(t, err)
	assert.Equal(t, "set", set.Name())
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "certctl", rootCmd.Use)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Sign-in cancelled. Please try again.", describe(&portal.ProviderError{Code: "auth/popup-closed-by-user"}))
	assert.Equal(t, "Invalid event selected", describe(&portal.APIError{Status: 400, Message: "Invalid event selected"}))
	assert.Equal(t, "request failed with status 502", describe(&portal.APIError{Status: 502}))
	assert.Equal(t, "Network error: refused", describe(&portal.NetworkError{Err: errors.New("refused")}))
	assert.Equal(t, "plain", describe(errors.New("plain")))
}

func TestSetConfigValue(t *testing.T) {
	appConfig = clientconfig.DefaultConfig()

	require.NoError(t, setConfigValue("base_url", "https://certs.example.com"))
	require.NoError(t, setConfigValue("template_mode", "upload"))
	require.NoError(t, setConfigValue("preview_width", "640"))
	assert.Equal(t, "https://certs.example.com", appConfig.BaseURL)
	assert.Equal(t, "upload", appConfig.TemplateMode)
	assert.Equal(t, 640, appConfig.PreviewWidth)

	assert.Error(t, setConfigValue("template_mode", "maybe"))
	assert.Error(t, setConfigValue("poll_interval_ms", "fast"))
	assert.Error(t, setConfigValue("colour", "red"))
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := clientconfig.DefaultConfig()
	cfg.BaseURL = baseURL
	require.NoError(t, cfg.Save(path))
	return path
}

func TestVerifyCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/verify", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Certificate not found"}`))
	}))
	defer srv.Close()

	rootCmd.SetArgs([]string{"--config", writeConfig(t, srv.URL), "verify", "ada@example.com", "e1"})
	require.NoError(t, rootCmd.Execute())
}

func TestLoginCommand_StoresBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","redirect":"/admin/dashboard","bearer":"portal-jwt"}`))
	}))
	defer srv.Close()

	path := writeConfig(t, srv.URL)
	rootCmd.SetArgs([]string{"--config", path, "login", "--token", "id-token"})
	require.NoError(t, rootCmd.Execute())

	cfg, err := clientconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "portal-jwt", cfg.Token)
}

func TestGenerateCommand_MissingFields(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(list, []byte("name,email\n"), 0600))

	rootCmd.SetArgs([]string{"--config", writeConfig(t, "http://127.0.0.1:1"), "generate", "--csv", list})
	err := rootCmd.Execute()
	var missing *portal.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Fields, "eventName")
	assert.Contains(t, missing.Fields, "centerX")
}
