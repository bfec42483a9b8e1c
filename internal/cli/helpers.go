package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ebph-project/ebphd/internal/daemon"
	"github.com/ebph-project/ebphd/internal/persist"
)

// openStore opens the persisted profile store directly, the way
// original_source's ebph_admin.py reads sqlite without going through the
// running daemon. Commands that only read/remove saved profiles use this
// instead of requiring ebphd to be running.
func openStore() (*persist.Store, error) {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return persist.Open(cfg.Store.Dir, cfg.Engine.CallSpace, cfg.Engine.Window)
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

// daemonBaseURL resolves the running daemon's HTTP control surface
// address from config.
func daemonBaseURL() (string, error) {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return fmt.Sprintf("http://%s:%d", cfg.API.Host, cfg.API.Port), nil
}

// daemonRequest issues method to path against the running daemon and
// decodes a JSON response into out (if non-nil).
func daemonRequest(method, path string, out any) error {
	base, err := daemonBaseURL()
	if err != nil {
		return err
	}

	req, err := http.NewRequest(method, base+path, nil)
	if err != nil {
		return err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("is ebphd running? %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("ebphd: %s", apiErr.Error)
		}
		return fmt.Errorf("ebphd returned %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
