package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// "Service" groups the app's secrets in the OS keychain.
	KeyringService = "jobsearch-engine"

	// EnvAPIKey overrides the keychain, mostly for headless/dev runs.
	EnvAPIKey = "JOBSEARCH_API_KEY"
)

func GetUpstreamKey(keyringAccount string) (string, error) {
	// 1) Keyring first (recommended)
	if strings.TrimSpace(keyringAccount) != "" {
		key, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(key) != "" {
			return key, nil
		}
	}

	// 2) Env fallback
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		return key, nil
	}

	return "", errors.New("upstream API key not found (set it in keychain or via env)")
}

func SetUpstreamKey(keyringAccount string, key string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, key)
}

func DeleteUpstreamKey(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

func UpstreamKeyringAccount(baseURL string) string {
	return fmt.Sprintf("jobsearch:upstream:%s", baseURL)
}
